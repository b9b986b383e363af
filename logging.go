package patman

import (
	"context"
	"log/slog"
	"net/http"
)

// transactionLog returns the interceptor that writes the debug transaction
// log of a call to req.Logger. It is installed only when debug logging is
// enabled, so none of its formatting runs otherwise.
func transactionLog(showAuth bool) Interceptor {
	redact := CensorAuthorization
	if showAuth {
		redact = func(h http.Header) http.Header { return h }
	}

	return func(ctx context.Context, req *Request, next RoundTripFunc) (*RawResponse, error) {
		logger := req.Logger
		logger.DebugContext(ctx, "request",
			slog.String("method", req.Method),
			slog.String("uri", req.URI()),
		)
		logger.DebugContext(ctx, "request headers",
			slog.Any("headers", redact(req.Header)),
		)

		res, err := next(ctx, req)
		if err != nil {
			logger.DebugContext(ctx, "request failed",
				slog.String("kind", errorKind(err)),
				slog.String("error", err.Error()),
			)
			return res, err
		}

		logger.DebugContext(ctx, "response",
			slog.Int("status", res.StatusCode),
			slog.String("status_text", res.StatusText),
		)
		logger.DebugContext(ctx, "response headers",
			slog.Any("headers", redact(res.Header)),
		)
		logger.DebugContext(ctx, "response body",
			slog.Any("body", res.Value),
		)
		return res, nil
	}
}
