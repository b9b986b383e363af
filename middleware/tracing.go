package middleware

import (
	"context"

	"github.com/broady/patman"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/broady/patman/middleware"

// Tracing creates an interceptor that wraps each call in a client span.
// A nil tp means the global tracer provider.
func Tracing(tp trace.TracerProvider) patman.Interceptor {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	return func(ctx context.Context, req *patman.Request, next patman.RoundTripFunc) (*patman.RawResponse, error) {
		ctx, span := tracer.Start(ctx, "patman "+req.Method,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.Int64("patman.request.id", int64(req.ID)),
				attribute.String("http.request.method", req.Method),
				attribute.String("url.full", req.URI()),
			),
		)
		defer span.End()

		res, err := next(ctx, req)
		if status, ok := patman.StatusOf(err); ok {
			span.SetAttributes(attribute.Int("http.response.status_code", status))
		} else if res != nil {
			span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome(err))
		}
		return res, err
	}
}
