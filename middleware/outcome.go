package middleware

import (
	"errors"
	"strconv"

	"github.com/broady/patman"
)

// outcome classifies a call result for labels and span status.
func outcome(err error) string {
	var te *patman.TransportError
	var ve *patman.ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &te):
		return "transport_error"
	case errors.As(err, &ve):
		return "validation_error"
	}
	return "error"
}

// statusCode returns the HTTP status of a call result as a label value,
// or "none" when no response was received.
func statusCode(res *patman.RawResponse, err error) string {
	if res != nil {
		return strconv.Itoa(res.StatusCode)
	}
	if status, ok := patman.StatusOf(err); ok {
		return strconv.Itoa(status)
	}
	return "none"
}
