package patman

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/broady/patman/testutil"
)

func TestHTTPTransport_Send(t *testing.T) {
	upstream := testutil.NewUpstream(t).RespondText(http.StatusCreated, "made").WithHeader("X-Id", "9")
	req := &Request{
		Method: "PUT",
		URL:    upstream.URL + "/things",
		Query:  "a=1",
		Header: http.Header{"X-Client": {"test"}},
		Body:   []byte(`{"a":1}`),
	}

	res, err := NewHTTPTransport(nil).Send(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.StatusCode != 201 || res.StatusText != "Created" || string(res.Body) != "made" {
		t.Errorf("unexpected response %+v", res)
	}
	if res.Header.Get("X-Id") != "9" {
		t.Error("expected response headers")
	}

	last := upstream.Last(t)
	if last.Method != "PUT" || last.Path != "/things" || last.RawQuery != "a=1" || string(last.Body) != `{"a":1}` {
		t.Errorf("unexpected request %+v", last)
	}
	upstream.AssertHeader(t, "X-Client", "test")
}

func TestHTTPTransport_Status(t *testing.T) {
	upstream := testutil.NewUpstream(t).RespondText(http.StatusTooManyRequests, "slow down")

	_, err := NewHTTPTransport(nil).Send(context.Background(), &Request{Method: "GET", URL: upstream.URL})
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if te.StatusCode != 429 || te.Status != "Too Many Requests" || string(te.Body) != "slow down" {
		t.Errorf("unexpected error %+v", te)
	}
	if te.Code() != CodeResourceExhausted {
		t.Errorf("expected %s, got %s", CodeResourceExhausted, te.Code())
	}
}

func TestHTTPTransport_NetworkError(t *testing.T) {
	upstream := testutil.NewUpstream(t)
	url := upstream.URL
	upstream.Close()

	_, err := NewHTTPTransport(nil).Send(context.Background(), &Request{Method: "GET", URL: url})
	var te *TransportError
	if !errors.As(err, &te) || te.Err == nil || te.StatusCode != 0 {
		t.Fatalf("expected network TransportError, got %v", err)
	}
	if te.Code() != CodeUnavailable {
		t.Errorf("expected %s, got %s", CodeUnavailable, te.Code())
	}
}

func TestHTTPTransport_MaxResponseSize(t *testing.T) {
	upstream := testutil.NewUpstream(t).RespondText(http.StatusOK, strings.Repeat("x", 100))

	_, err := NewHTTPTransport(nil).WithMaxResponseSize(10).Send(context.Background(), &Request{Method: "GET", URL: upstream.URL})
	if err == nil || !strings.Contains(err.Error(), "exceeds 10 bytes") {
		t.Errorf("expected size error, got %v", err)
	}

	res, err := NewHTTPTransport(nil).WithMaxResponseSize(100).Send(context.Background(), &Request{Method: "GET", URL: upstream.URL})
	if err != nil || len(res.Body) != 100 {
		t.Errorf("expected full body, got %v", err)
	}
}

func TestHTTPTransport_WithTracing(t *testing.T) {
	upstream := testutil.NewUpstream(t)
	client := &http.Client{}
	tr := NewHTTPTransport(client).WithTracing()
	if client.Transport != nil {
		t.Error("expected the original client to be untouched")
	}
	if _, err := tr.Send(context.Background(), &Request{Method: "GET", URL: upstream.URL}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRequest_URI(t *testing.T) {
	tests := []struct {
		url, query, want string
	}{
		{"https://x/api/", "", "https://x/api/"},
		{"https://x/api/", "a=1", "https://x/api/?a=1"},
		{"https://x/api/?k=v", "a=1", "https://x/api/?k=v&a=1"},
	}
	for _, tt := range tests {
		r := &Request{URL: tt.url, Query: tt.query}
		if got := r.URI(); got != tt.want {
			t.Errorf("URI() = %q, want %q", got, tt.want)
		}
	}
}
