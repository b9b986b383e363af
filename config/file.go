package config

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/broady/patman"
	"gopkg.in/yaml.v3"
)

// File describes a set of services and endpoints:
//
//	services:
//	  prod:
//	    baseUrl: https://baconipsum.com
//	    headers:
//	      X-Api-Key: ${BACON_KEY}
//	endpoints:
//	  lorem:
//	    method: GET
//	    path: /api/
//	    params:
//	      type: all-meat
//	      paras: 1
//
// Values may reference environment variables as ${NAME}.
type File struct {
	Services  map[string]ServiceConfig  `yaml:"services"`
	Endpoints map[string]EndpointConfig `yaml:"endpoints"`
}

// ServiceConfig is one entry under services.
type ServiceConfig struct {
	BaseURL   string            `yaml:"baseUrl"`
	Headers   map[string]string `yaml:"headers"`
	BasicAuth *BasicAuthConfig  `yaml:"basicAuth"`
}

// BasicAuthConfig adds an Authorization header to a service.
type BasicAuthConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// EndpointConfig is one entry under endpoints.
type EndpointConfig struct {
	Method  string            `yaml:"method"`
	Path    string            `yaml:"path"`
	Headers map[string]string `yaml:"headers"`
	Params  ParamList         `yaml:"params"`
}

// ParamList is a YAML mapping of query parameters that keeps the order of
// its keys. A value is a scalar or a list of scalars.
type ParamList patman.Params

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *ParamList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: params must be a mapping", node.Line)
	}
	out := make(ParamList, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			if val.Tag == "!!null" {
				out = append(out, patman.Param{Key: key.Value})
				continue
			}
			out = append(out, patman.Param{Key: key.Value, Value: val.Value})
		case yaml.SequenceNode:
			var values []string
			if err := val.Decode(&values); err != nil {
				return fmt.Errorf("line %d: param %q: %w", val.Line, key.Value, err)
			}
			out = append(out, patman.Param{Key: key.Value, Value: values})
		default:
			return fmt.Errorf("line %d: param %q must be a scalar or a list", val.Line, key.Value)
		}
	}
	*p = out
	return nil
}

// Load reads and parses the file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return f, nil
}

// Parse parses a YAML document.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// BuildServices returns the validated services with environment
// references expanded.
func (f *File) BuildServices() (patman.Services, error) {
	out := make(patman.Services, len(f.Services))
	for name, sc := range f.Services {
		headers := expandMap(sc.Headers)
		if sc.BasicAuth != nil {
			headers = patman.MergeHeaders(headers, patman.BasicAuth(expand(sc.BasicAuth.User), expand(sc.BasicAuth.Password)))
		}
		svc, err := patman.NewService(expand(sc.BaseURL), headers)
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", name, err)
		}
		out[name] = svc
	}
	return out, nil
}

// BuildEndpoints returns one endpoint per entry. Each takes extra query
// parameters as its argument; they are sent after the configured ones.
// Response bodies are accepted as they are.
func (f *File) BuildEndpoints() (map[string]patman.Definition, error) {
	out := make(map[string]patman.Definition, len(f.Endpoints))
	for name, ec := range f.Endpoints {
		ep, err := ec.build()
		if err != nil {
			return nil, fmt.Errorf("endpoint %q: %w", name, err)
		}
		out[name] = ep
	}
	return out, nil
}

func (ec EndpointConfig) build() (*patman.Endpoint[patman.Params, any], error) {
	method := ec.Method
	if method == "" {
		method = "GET"
	}
	if strings.ContainsAny(method, " \t/") {
		return nil, fmt.Errorf("invalid method %q", method)
	}
	path := expand(ec.Path)
	if path != "" && !strings.HasPrefix(path, "/") {
		return nil, fmt.Errorf("path %q must start with /", path)
	}

	static := make(patman.Params, len(ec.Params))
	for i, p := range ec.Params {
		static[i] = patman.Param{Key: p.Key, Value: expandValue(p.Value)}
	}

	ep := patman.NewEndpoint[patman.Params, any](method, path).
		WithParamsFunc(func(ctx context.Context, extra patman.Params) (patman.Params, error) {
			return append(slices.Clone(static), extra...), nil
		})
	if len(ec.Headers) > 0 {
		ep = ep.WithHeaders(expandMap(ec.Headers))
	}
	return ep, nil
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expand replaces ${NAME} with the value of the environment variable NAME.
func expand(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		return os.Getenv(ref[2 : len(ref)-1])
	})
}

func expandMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = expand(v)
	}
	return out
}

func expandValue(v any) any {
	switch v := v.(type) {
	case string:
		return expand(v)
	case []string:
		out := make([]string, len(v))
		for i, s := range v {
			out[i] = expand(s)
		}
		return out
	}
	return v
}
