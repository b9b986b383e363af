package patman

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/broady/patman/internal/meta"
	"golang.org/x/sync/errgroup"
)

// NoArgs is the argument type of endpoints that take no arguments.
type NoArgs = struct{}

// value is either a static T or a function of the call arguments.
type value[A, T any] struct {
	static T
	fn     func(context.Context, A) (T, error)
}

func (v value[A, T]) computed() bool {
	return v.fn != nil
}

func (v value[A, T]) resolve(ctx context.Context, args A) (T, error) {
	if v.fn == nil {
		return v.static, nil
	}
	return v.fn(ctx, args)
}

// Endpoint declares how to build one kind of request from arguments of type
// A and the expected shape B of the response body.
//
// Path, headers, params and payload are each either static or computed from
// the arguments at call time. The With* methods return modified copies; an
// Endpoint is never changed once built, so it can be shared freely.
type Endpoint[A, B any] struct {
	method  string
	path    value[A, string]
	headers value[A, map[string]string]
	params  value[A, Params]
	payload value[A, any]
	schema  Schema[B]
}

// NewEndpoint creates an endpoint with a static path.
// The response body is checked with SchemaOf[B]; use any for B to accept
// every body.
func NewEndpoint[A, B any](method, path string) *Endpoint[A, B] {
	return &Endpoint[A, B]{
		method: strings.ToUpper(method),
		path:   value[A, string]{static: path},
		schema: SchemaOf[B](),
	}
}

func (e *Endpoint[A, B]) clone() *Endpoint[A, B] {
	c := *e
	return &c
}

// Method returns the HTTP method.
func (e *Endpoint[A, B]) Method() string {
	return e.method
}

// WithPathFunc computes the path from the arguments.
func (e *Endpoint[A, B]) WithPathFunc(fn func(context.Context, A) (string, error)) *Endpoint[A, B] {
	c := e.clone()
	c.path = value[A, string]{fn: fn}
	return c
}

// WithHeaders sets static endpoint headers. They override service headers
// with the same name.
func (e *Endpoint[A, B]) WithHeaders(h map[string]string) *Endpoint[A, B] {
	c := e.clone()
	c.headers = value[A, map[string]string]{static: maps.Clone(h)}
	return c
}

// WithHeadersFunc computes endpoint headers from the arguments.
func (e *Endpoint[A, B]) WithHeadersFunc(fn func(context.Context, A) (map[string]string, error)) *Endpoint[A, B] {
	c := e.clone()
	c.headers = value[A, map[string]string]{fn: fn}
	return c
}

// WithParams sets static query parameters.
func (e *Endpoint[A, B]) WithParams(p Params) *Endpoint[A, B] {
	c := e.clone()
	c.params = value[A, Params]{static: slices.Clone(p)}
	return c
}

// WithParamsFunc computes query parameters from the arguments.
func (e *Endpoint[A, B]) WithParamsFunc(fn func(context.Context, A) (Params, error)) *Endpoint[A, B] {
	c := e.clone()
	c.params = value[A, Params]{fn: fn}
	return c
}

// WithPayload sets a static request body, sent as JSON.
func (e *Endpoint[A, B]) WithPayload(v any) *Endpoint[A, B] {
	c := e.clone()
	c.payload = value[A, any]{static: v}
	return c
}

// WithPayloadFunc computes the request body from the arguments. A nil
// result sends no body.
func (e *Endpoint[A, B]) WithPayloadFunc(fn func(context.Context, A) (any, error)) *Endpoint[A, B] {
	c := e.clone()
	c.payload = value[A, any]{fn: fn}
	return c
}

// WithSchema replaces the response body schema.
func (e *Endpoint[A, B]) WithSchema(s Schema[B]) *Endpoint[A, B] {
	c := e.clone()
	c.schema = s
	return c
}

// Metadata returns the runtime metadata for the endpoint.
func (e *Endpoint[A, B]) Metadata() *meta.EndpointMetadata {
	m := &meta.EndpointMetadata{
		Method: e.method,
		Args:   reflect.TypeFor[A](),
		Body:   reflect.TypeFor[B](),
		Schema: e.schema.Name(),
	}
	if e.path.computed() {
		m.Computed = append(m.Computed, "path")
	} else {
		m.Path = e.path.static
	}
	if e.headers.computed() {
		m.Computed = append(m.Computed, "headers")
	}
	if e.params.computed() {
		m.Computed = append(m.Computed, "params")
	}
	if e.payload.computed() {
		m.Computed = append(m.Computed, "payload")
	}
	return m
}

// resolved holds the per-call values of an endpoint.
type resolved struct {
	path    string
	headers map[string]string
	params  Params
	payload any
}

// resolve evaluates path, headers, params and payload for args. Computed
// parts run concurrently; the first failure cancels the others' context and
// is returned.
func (e *Endpoint[A, B]) resolve(ctx context.Context, args A) (resolved, error) {
	if !e.path.computed() && !e.headers.computed() && !e.params.computed() && !e.payload.computed() {
		return resolved{
			path:    e.path.static,
			headers: e.headers.static,
			params:  e.params.static,
			payload: e.payload.static,
		}, nil
	}

	var r resolved
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		r.params, err = e.params.resolve(gctx, args)
		return resolveErr("params", err)
	})
	g.Go(func() (err error) {
		r.path, err = e.path.resolve(gctx, args)
		return resolveErr("path", err)
	})
	g.Go(func() (err error) {
		r.headers, err = e.headers.resolve(gctx, args)
		return resolveErr("headers", err)
	})
	g.Go(func() (err error) {
		r.payload, err = e.payload.resolve(gctx, args)
		return resolveErr("payload", err)
	})
	if err := g.Wait(); err != nil {
		return resolved{}, err
	}
	return r, nil
}

func resolveErr(part string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("patman: resolve %s: %w", part, err)
}
