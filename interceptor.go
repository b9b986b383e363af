package patman

import (
	"context"
)

// RoundTripFunc performs a request and decodes its response.
// It is passed to [Interceptor] functions to invoke the next interceptor
// or the transport.
type RoundTripFunc func(ctx context.Context, req *Request) (*RawResponse, error)

// Interceptor is a hook that wraps the dispatch of a request.
//
//	func timing(ctx context.Context, req *patman.Request, next patman.RoundTripFunc) (*patman.RawResponse, error) {
//	    start := time.Now()
//	    res, err := next(ctx, req)
//	    log.Printf("%s %s took %v", req.Method, req.URI(), time.Since(start))
//	    return res, err
//	}
//
// next sends the request and decodes the body against the endpoint schema,
// so err may be a *TransportError or a *ValidationError. Interceptors may
// inspect or annotate the request and response; they must return errors
// they do not handle unchanged.
type Interceptor func(ctx context.Context, req *Request, next RoundTripFunc) (*RawResponse, error)

// chainInterceptors combines multiple interceptors into a single one.
// The first interceptor in the slice is the outer-most one (runs first).
func chainInterceptors(interceptors []Interceptor) Interceptor {
	if len(interceptors) == 0 {
		return nil
	}
	if len(interceptors) == 1 {
		return interceptors[0]
	}
	return func(ctx context.Context, req *Request, next RoundTripFunc) (*RawResponse, error) {
		chain := next
		for i := len(interceptors) - 1; i >= 0; i-- {
			current := interceptors[i]
			inner := chain
			chain = func(ctx context.Context, req *Request) (*RawResponse, error) {
				return current(ctx, req, inner)
			}
		}
		return chain(ctx, req)
	}
}
