// Package testutil provides a fake upstream service for exercising call functions.
// This package is designed to be import-cycle safe and can be used from any package.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
)

// Recorded is a request received by an Upstream.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Upstream is an httptest server that records every request and answers
// with a configurable canned response.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Recorded
	status   int
	headers  map[string]string
	body     []byte
}

// NewUpstream starts an upstream answering 200 with an empty JSON object.
// It is closed when the test ends.
func NewUpstream(t testing.TB) *Upstream {
	t.Helper()
	u := &Upstream{
		status:  http.StatusOK,
		headers: map[string]string{"Content-Type": "application/json"},
		body:    []byte("{}"),
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	t.Cleanup(u.Close)
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	u.mu.Lock()
	u.requests = append(u.requests, Recorded{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	})
	status, headers, out := u.status, u.headers, u.body
	u.mu.Unlock()

	for k, v := range headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(status)
	w.Write(out)
}

// RespondJSON sets the response to v encoded as JSON.
func (u *Upstream) RespondJSON(status int, v any) *Upstream {
	data, _ := json.Marshal(v)
	return u.respond(status, "application/json", data)
}

// RespondText sets a plain text response.
func (u *Upstream) RespondText(status int, body string) *Upstream {
	return u.respond(status, "text/plain; charset=utf-8", []byte(body))
}

func (u *Upstream) respond(status int, contentType string, body []byte) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
	u.headers["Content-Type"] = contentType
	u.body = body
	return u
}

// WithHeader adds a response header.
func (u *Upstream) WithHeader(key, value string) *Upstream {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.headers[key] = value
	return u
}

// Requests returns the requests received so far, oldest first.
func (u *Upstream) Requests() []Recorded {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]Recorded(nil), u.requests...)
}

// Last returns the most recent request, failing the test if there is none.
func (u *Upstream) Last(t testing.TB) Recorded {
	t.Helper()
	reqs := u.Requests()
	if len(reqs) == 0 {
		t.Fatal("upstream received no requests")
	}
	return reqs[len(reqs)-1]
}

// AssertQuery checks the raw query string of the last request.
func (u *Upstream) AssertQuery(t testing.TB, expected string) {
	t.Helper()
	if got := u.Last(t).RawQuery; got != expected {
		t.Errorf("expected query %q, got %q", expected, got)
	}
}

// AssertHeader checks a header of the last request.
func (u *Upstream) AssertHeader(t testing.TB, key, expectedValue string) {
	t.Helper()
	actual := u.Last(t).Header.Get(key)
	if actual != expectedValue {
		t.Errorf("expected header %s=%s, got %s", key, expectedValue, actual)
	}
}
