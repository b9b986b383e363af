package patman

import (
	"context"
	"fmt"
	"sort"

	"github.com/broady/patman/internal/meta"
)

// Definition is an endpoint whose argument and body types are erased, so
// endpoints of different types can share a map.
// It is implemented by *Endpoint and sealed so users cannot implement it.
type Definition interface {
	Method() string
	Metadata() *meta.EndpointMetadata
	bind(c *Client, svc Service) Invoker
}

func (e *Endpoint[A, B]) bind(c *Client, svc Service) Invoker {
	return Bind(c, svc, e)
}

// Invoker is a call function with its argument and body types erased.
// The concrete value is a CallFunc; use As to get it back.
type Invoker interface {
	Invoke(ctx context.Context, args any) (*Response[any], error)
}

// As returns the typed call function behind inv.
func As[A, B any](inv Invoker) (CallFunc[A, B], bool) {
	f, ok := inv.(CallFunc[A, B])
	return f, ok
}

// Matrix holds one call function per service and endpoint name:
// m[service][endpoint].
type Matrix map[string]map[string]Invoker

// Combine binds every endpoint to every service eagerly, so that invalid
// services are reported here rather than on first call.
func Combine(c *Client, services Services, endpoints map[string]Definition) (Matrix, error) {
	m := make(Matrix, len(services))
	for _, name := range sortedKeys(services) {
		svc := services[name]
		if err := svc.Validate(); err != nil {
			return nil, fmt.Errorf("patman: service %q: %w", name, err)
		}
		calls := make(map[string]Invoker, len(endpoints))
		for endName, ep := range endpoints {
			if ep == nil {
				return nil, fmt.Errorf("patman: endpoint %q is nil", endName)
			}
			calls[endName] = ep.bind(c, svc)
		}
		m[name] = calls
	}
	return m, nil
}

// Lookup returns the call function for service and endpoint.
func (m Matrix) Lookup(service, endpoint string) (Invoker, error) {
	calls, ok := m[service]
	if !ok {
		return nil, fmt.Errorf("patman: unknown service %q (have %v)", service, sortedKeys(m))
	}
	inv, ok := calls[endpoint]
	if !ok {
		return nil, fmt.Errorf("patman: unknown endpoint %q (have %v)", endpoint, sortedKeys(calls))
	}
	return inv, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
