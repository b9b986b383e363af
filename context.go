package patman

import (
	"context"
	"log/slog"
)

type contextKey struct {
	name string
}

var requestKey = &contextKey{"request"}

var discardLogger = slog.New(slog.DiscardHandler)

// newContext attaches the in-flight request so computed resolvers and
// interceptors can reach its id and logger.
func newContext(ctx context.Context, req *Request) context.Context {
	return context.WithValue(ctx, requestKey, req)
}

// RequestFromContext returns the request being built or performed.
func RequestFromContext(ctx context.Context) *Request {
	if r, ok := ctx.Value(requestKey).(*Request); ok {
		return r
	}
	return nil
}

// RequestIDFromContext returns the correlation id of the current call.
func RequestIDFromContext(ctx context.Context) (uint64, bool) {
	if r := RequestFromContext(ctx); r != nil {
		return r.ID, true
	}
	return 0, false
}

// LoggerFromContext returns the transaction logger of the current call, or
// a logger that discards everything.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if r := RequestFromContext(ctx); r != nil && r.Logger != nil {
		return r.Logger
	}
	return discardLogger
}
