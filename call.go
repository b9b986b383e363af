package patman

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/goccy/go-json"
)

// Client binds endpoints to services. It carries the transport, logger,
// interceptors and correlation counter shared by the call functions it
// creates. Configure a Client before binding; call functions capture its
// settings when they are created.
type Client struct {
	transport       Transport
	logger          *slog.Logger
	counter         *Counter
	interceptors    []Interceptor
	showAuthHeaders bool
}

// NewClient creates a client with its own correlation counter that sends
// requests with http.DefaultClient.
func NewClient() *Client {
	return &Client{
		transport: NewHTTPTransport(nil),
		counter:   &Counter{},
	}
}

var defaultClient = &Client{
	transport: NewHTTPTransport(nil),
	counter:   processCounter,
}

// DefaultClient returns the client used by NewCallFunc. Its correlation
// counter lives for the whole process.
func DefaultClient() *Client {
	return defaultClient
}

// WithTransport sets the transport. It returns the client for chaining.
func (c *Client) WithTransport(t Transport) *Client {
	c.transport = t
	return c
}

// WithLogger sets the logger for transaction logs.
// If not set, slog.Default() will be used. Transaction logs are written at
// debug level; when the logger has debug disabled at bind time, call
// functions do no logging work at all.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.logger = logger
	return c
}

// WithCounter replaces the correlation counter, e.g. to share one counter
// between clients.
func (c *Client) WithCounter(counter *Counter) *Client {
	c.counter = counter
	return c
}

// WithInterceptor adds an interceptor.
// Interceptors execute in the order they were added, inside the
// transaction logger.
func (c *Client) WithInterceptor(i Interceptor) *Client {
	c.interceptors = append(c.interceptors, i)
	return c
}

// WithShowAuthHeaders disables Authorization redaction in transaction logs.
func (c *Client) WithShowAuthHeaders() *Client {
	c.showAuthHeaders = true
	return c
}

func (c *Client) getLogger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// CallFunc invokes one endpoint against one service.
type CallFunc[A, B any] func(ctx context.Context, args A) (*Response[B], error)

// Invoke implements Invoker.
func (f CallFunc[A, B]) Invoke(ctx context.Context, args any) (*Response[any], error) {
	var a A
	if args != nil {
		var ok bool
		if a, ok = args.(A); !ok {
			return nil, fmt.Errorf("patman: invalid argument type %T, want %T", args, a)
		}
	}
	res, err := f(ctx, a)
	if err != nil {
		return nil, err
	}
	return &Response[any]{
		StatusCode: res.StatusCode,
		StatusText: res.StatusText,
		Header:     res.Header,
		Body:       res.Body,
		Request:    res.Request,
	}, nil
}

// NewCallFunc binds ep to svc on the default client.
func NewCallFunc[A, B any](svc Service, ep *Endpoint[A, B]) CallFunc[A, B] {
	return Bind(DefaultClient(), svc, ep)
}

// Bind creates the call function for ep against svc.
//
// Each call draws a correlation id, resolves the endpoint for its
// arguments, merges service and endpoint headers, sends the request through
// the client's interceptors and transport, and decodes the body against the
// endpoint schema. Transport and validation errors are returned unmodified.
func Bind[A, B any](c *Client, svc Service, ep *Endpoint[A, B]) CallFunc[A, B] {
	logger := c.getLogger()
	logging := logger.Enabled(context.Background(), slog.LevelDebug)

	interceptors := slices.Clone(c.interceptors)
	if logging {
		interceptors = append([]Interceptor{transactionLog(c.showAuthHeaders)}, interceptors...)
	}
	chain := chainInterceptors(interceptors)
	transport := c.transport
	counter := c.counter

	roundTrip := func(ctx context.Context, req *Request) (*RawResponse, error) {
		raw, err := transport.Send(ctx, req)
		if err != nil {
			return nil, err
		}
		v, err := Decode(ep.schema, ParseBody(raw.Body))
		if err != nil {
			return nil, err
		}
		raw.Value = v
		return raw, nil
	}

	return func(ctx context.Context, args A) (*Response[B], error) {
		req := &Request{
			ID:     counter.Next(),
			Method: ep.method,
			Logger: discardLogger,
		}
		if logging {
			req.Name = transactionName(req.ID)
			req.Logger = logger.With(slog.String("txn", req.Name))
		}
		ctx = newContext(ctx, req)

		r, err := ep.resolve(ctx, args)
		if err != nil {
			return nil, err
		}
		req.URL = svc.BaseURL + r.path
		req.Header = toHTTPHeader(MergeHeaders(svc.Headers, r.headers))
		req.Query = r.params.Encode()
		if r.payload != nil {
			if req.Body, err = json.Marshal(r.payload); err != nil {
				return nil, fmt.Errorf("patman: encode payload: %w", err)
			}
			if req.Header.Get("Content-Type") == "" {
				req.Header.Set("Content-Type", "application/json")
			}
		}

		var raw *RawResponse
		if chain != nil {
			raw, err = chain(ctx, req, roundTrip)
		} else {
			raw, err = roundTrip(ctx, req)
		}
		if err != nil {
			return nil, err
		}
		if raw == nil {
			return nil, fmt.Errorf("patman: %s %s: no response", req.Method, req.URI())
		}
		if raw.Value == nil {
			// Null body, or a response made up by an interceptor.
			if raw.Value, err = Decode(ep.schema, ParseBody(raw.Body)); err != nil {
				return nil, err
			}
		}
		return newResponse[B](req, raw)
	}
}
