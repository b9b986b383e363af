package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/broady/patman"
	"github.com/broady/patman/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	ok := testutil.NewUpstream(t).RespondJSON(http.StatusOK, []string{"a"})
	call := bindWith(t, ok, m.Interceptor())
	for range 2 {
		if _, err := call(context.Background(), patman.NoArgs{}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	missing := testutil.NewUpstream(t).RespondText(http.StatusNotFound, "")
	bindWith(t, missing, m.Interceptor())(context.Background(), patman.NoArgs{})

	invalid := testutil.NewUpstream(t).RespondJSON(http.StatusOK, map[string]int{"a": 1})
	bindWith(t, invalid, m.Interceptor())(context.Background(), patman.NoArgs{})

	tests := []struct {
		labels []string
		want   float64
	}{
		{[]string{"GET", "200", "success"}, 2},
		{[]string{"GET", "404", "transport_error"}, 1},
		{[]string{"GET", "none", "validation_error"}, 1},
	}
	for _, tt := range tests {
		if got := promtest.ToFloat64(m.requests.WithLabelValues(tt.labels...)); got != tt.want {
			t.Errorf("requests_total%v = %v, want %v", tt.labels, got, tt.want)
		}
	}
	if n := promtest.CollectAndCount(m.duration); n != 1 {
		t.Errorf("expected 1 duration series, got %d", n)
	}
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewMetrics(reg); err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected error registering twice")
	}
}
