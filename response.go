package patman

import (
	"fmt"
	"net/http"
	"reflect"
)

// RawResponse is what a Transport returns for a 2xx answer.
// Value is set to the decoded body once the body passed the endpoint schema.
// A response made up by an interceptor may leave Value nil; Body is then
// decoded against the schema before the call returns.
type RawResponse struct {
	StatusCode int
	// StatusText is the reason phrase, e.g. "OK".
	StatusText string
	Header     http.Header
	Body       []byte
	Value      any
}

// Response is the result of a successful call. Body holds the validated
// response body.
type Response[B any] struct {
	StatusCode int
	StatusText string
	Header     http.Header
	Body       B
	Request    *Request
}

func newResponse[B any](req *Request, raw *RawResponse) (*Response[B], error) {
	var body B
	if raw.Value != nil {
		var ok bool
		if body, ok = raw.Value.(B); !ok {
			return nil, fmt.Errorf("patman: decoded body is %T, want %v", raw.Value, reflect.TypeFor[B]())
		}
	}
	return &Response[B]{
		StatusCode: raw.StatusCode,
		StatusText: raw.StatusText,
		Header:     raw.Header,
		Body:       body,
		Request:    req,
	}, nil
}
