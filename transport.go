package patman

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Transport performs a request. Non-2xx answers and network failures are
// reported as *TransportError.
type Transport interface {
	Send(ctx context.Context, req *Request) (*RawResponse, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*RawResponse, error)

func (f TransportFunc) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	return f(ctx, req)
}

// HTTPTransport sends requests with a net/http client.
type HTTPTransport struct {
	client          *http.Client
	maxResponseSize int64
}

// NewHTTPTransport creates a transport backed by client.
// A nil client means http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// WithMaxResponseSize limits how many body bytes are read.
// A value of 0 means no limit.
func (t *HTTPTransport) WithMaxResponseSize(size int64) *HTTPTransport {
	t.maxResponseSize = size
	return t
}

// WithTracing wraps the client's round tripper with OpenTelemetry HTTP
// instrumentation. The underlying client is copied, not modified.
func (t *HTTPTransport) WithTracing(opts ...otelhttp.Option) *HTTPTransport {
	c := *t.client
	base := c.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c.Transport = otelhttp.NewTransport(base, opts...)
	t.client = &c
	return t
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (*RawResponse, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URI(), body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URI(), Err: err}
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = http.Header{}
	}

	res, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Method: req.Method, URL: req.URI(), Err: err}
	}
	defer res.Body.Close()

	var r io.Reader = res.Body
	if t.maxResponseSize > 0 {
		r = io.LimitReader(res.Body, t.maxResponseSize+1)
	}
	data, err := io.ReadAll(r)
	if err == nil && t.maxResponseSize > 0 && int64(len(data)) > t.maxResponseSize {
		err = fmt.Errorf("response body exceeds %d bytes", t.maxResponseSize)
	}
	if err != nil {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        req.URI(),
			StatusCode: res.StatusCode,
			Status:     statusText(res),
			Header:     res.Header,
			Err:        err,
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &TransportError{
			Method:     req.Method,
			URL:        req.URI(),
			StatusCode: res.StatusCode,
			Status:     statusText(res),
			Header:     res.Header,
			Body:       data,
		}
	}
	return &RawResponse{
		StatusCode: res.StatusCode,
		StatusText: statusText(res),
		Header:     res.Header,
		Body:       data,
	}, nil
}

// statusText returns the reason phrase of res.
func statusText(res *http.Response) string {
	if text, ok := strings.CutPrefix(res.Status, strconv.Itoa(res.StatusCode)+" "); ok {
		return text
	}
	return http.StatusText(res.StatusCode)
}
