package middleware

import (
	"context"
	"time"

	"github.com/broady/patman"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records Prometheus metrics for calls.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the call metrics and registers them with reg.
// A nil reg means prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "patman",
			Name:      "requests_total",
			Help:      "Calls by method, HTTP status and outcome.",
		}, []string{"method", "code", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "patman",
			Name:      "request_duration_seconds",
			Help:      "Call latency including body validation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Interceptor returns the interceptor that updates m.
func (m *Metrics) Interceptor() patman.Interceptor {
	return func(ctx context.Context, req *patman.Request, next patman.RoundTripFunc) (*patman.RawResponse, error) {
		start := time.Now()
		res, err := next(ctx, req)
		m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
		m.requests.WithLabelValues(req.Method, statusCode(res, err), outcome(err)).Inc()
		return res, err
	}
}
