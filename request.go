package patman

import (
	"log/slog"
	"net/http"
	"strings"
)

// Request describes one invocation of a call function. It is built after the
// endpoint is resolved and discarded when the call returns.
type Request struct {
	// ID is the correlation id, unique within the Counter that issued it.
	ID uint64
	// Name is "{ID}.{random suffix}". It is empty when transaction
	// logging is disabled.
	Name   string
	Method string
	// URL is the service base URL joined with the resolved path.
	URL    string
	Header http.Header
	// Query is the encoded query string without the leading "?".
	Query string
	// Body is the JSON-encoded payload, or nil.
	Body []byte
	// Logger is the transaction logger. It discards output when
	// transaction logging is disabled.
	Logger *slog.Logger
}

// URI returns the fully resolved request URI, query included.
func (r *Request) URI() string {
	if r.Query == "" {
		return r.URL
	}
	if strings.Contains(r.URL, "?") {
		return r.URL + "&" + r.Query
	}
	return r.URL + "?" + r.Query
}
