package patman

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/textproto"
	"strings"

	"golang.org/x/oauth2"
)

// MergeHeaders returns a new map holding base overlaid with override.
// Header names are compared case-insensitively and returned in canonical
// form, so "authorization" in override replaces "Authorization" in base.
// Neither input is modified.
func MergeHeaders(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	for k, v := range override {
		out[textproto.CanonicalMIMEHeaderKey(k)] = v
	}
	return out
}

// BasicAuth returns an Authorization header for HTTP basic authentication.
func BasicAuth(user, pass string) map[string]string {
	token := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
	return map[string]string{"Authorization": "Basic " + token}
}

// TokenHeaders returns a computed header resolver that sets Authorization
// from ts on every call. It can be passed to [Endpoint.WithHeadersFunc].
func TokenHeaders[A any](ts oauth2.TokenSource) func(context.Context, A) (map[string]string, error) {
	return func(ctx context.Context, _ A) (map[string]string, error) {
		tok, err := ts.Token()
		if err != nil {
			return nil, fmt.Errorf("patman: token: %w", err)
		}
		return map[string]string{"Authorization": tok.Type() + " " + tok.AccessToken}, nil
	}
}

// CensorAuthorization returns a copy of h whose Authorization value keeps
// the scheme and the first two characters of the credential, with the rest
// replaced by '*' up to the original length. h is returned as is when it
// has no Authorization header.
func CensorAuthorization(h http.Header) http.Header {
	auth := h.Get("Authorization")
	if auth == "" {
		return h
	}
	out := h.Clone()
	out.Set("Authorization", censor(auth))
	return out
}

func censor(s string) string {
	keep := min(strings.IndexByte(s, ' ')+3, len(s))
	return s[:keep] + strings.Repeat("*", len(s)-keep)
}

func toHTTPHeader(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}
