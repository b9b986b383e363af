package patman

import (
	"errors"
)

// Recovery turns a recognized error into a fallback value. For any other
// error it returns the error unchanged.
type Recovery[T any] func(err error) (T, error)

// OnStatus recovers from a TransportError with the given HTTP status.
func OnStatus[T any](status int, fallback T) Recovery[T] {
	return func(err error) (T, error) {
		if got, ok := StatusOf(err); ok && got == status {
			return fallback, nil
		}
		var zero T
		return zero, err
	}
}

// OnNotFound recovers from a 404 response.
func OnNotFound[T any](fallback T) Recovery[T] {
	return OnStatus(404, fallback)
}

// OnValidationError recovers from a body that failed its schema.
func OnValidationError[T any](fallback T) Recovery[T] {
	return func(err error) (T, error) {
		var ve *ValidationError
		if errors.As(err, &ve) {
			return fallback, nil
		}
		var zero T
		return zero, err
	}
}

// Body returns the body of res, or, if err is set, the result of the first
// recovery that recognizes it. Unrecognized errors are returned unchanged.
//
//	res, err := list(ctx, args)
//	names, err := patman.Body(res, err,
//	    patman.OnNotFound([]string{}),
//	    patman.OnValidationError([]string{}))
func Body[B any](res *Response[B], err error, recoveries ...Recovery[B]) (B, error) {
	if err == nil {
		return res.Body, nil
	}
	for _, r := range recoveries {
		v, rerr := r(err)
		if rerr == nil {
			return v, nil
		}
		err = rerr
	}
	var zero B
	return zero, err
}
