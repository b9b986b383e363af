package patman

import (
	"fmt"
	"maps"
	"net/url"
)

// Service is one deployment target: a base URL and the default headers sent
// with every endpoint bound to it. Call functions only read a Service.
type Service struct {
	// BaseURL must include the scheme, e.g. "https://api.example.com/v1".
	// Endpoint paths are appended verbatim.
	BaseURL string
	Headers map[string]string
}

// NewService validates baseURL and copies headers.
func NewService(baseURL string, headers map[string]string) (Service, error) {
	s := Service{BaseURL: baseURL, Headers: maps.Clone(headers)}
	if err := s.Validate(); err != nil {
		return Service{}, err
	}
	return s, nil
}

// Validate reports whether BaseURL is an absolute http(s) URL.
func (s Service) Validate() error {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return fmt.Errorf("patman: invalid base URL %q: %w", s.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("patman: base URL %q must use the http or https scheme", s.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("patman: base URL %q has no host", s.BaseURL)
	}
	return nil
}

// Services is a named set of deployment targets, such as "prod" and "dev".
type Services map[string]Service
