// Package middleware provides interceptors for patman call functions.
package middleware

import (
	"context"
	"log/slog"
	"time"

	"github.com/broady/patman"
)

// AccessLog creates an interceptor that logs calls using slog.
// It logs the start and end of each call, including duration and error
// status. Unlike the debug transaction log it runs at info level and never
// prints headers or bodies.
func AccessLog(logger *slog.Logger) patman.Interceptor {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context, req *patman.Request, next patman.RoundTripFunc) (*patman.RawResponse, error) {
		start := time.Now()

		logger.InfoContext(ctx, "call started",
			slog.Uint64("id", req.ID),
			slog.String("method", req.Method),
			slog.String("url", req.URL),
		)

		res, err := next(ctx, req)
		duration := time.Since(start)

		if err != nil {
			logger.ErrorContext(ctx, "call failed",
				slog.Uint64("id", req.ID),
				slog.Duration("duration", duration),
				slog.Any("error", err),
			)
		} else {
			logger.InfoContext(ctx, "call completed",
				slog.Uint64("id", req.ID),
				slog.Int("status", res.StatusCode),
				slog.Duration("duration", duration),
			)
		}

		return res, err
	}
}
