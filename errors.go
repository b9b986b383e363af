package patman

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// ErrorCode represents a machine-readable classification of a failed call.
type ErrorCode string

const (
	CodeInvalidArgument   ErrorCode = "invalid_argument"
	CodeUnauthenticated   ErrorCode = "unauthenticated"
	CodePermissionDenied  ErrorCode = "permission_denied"
	CodeNotFound          ErrorCode = "not_found"
	CodeMethodNotAllowed  ErrorCode = "method_not_allowed"
	CodeConflict          ErrorCode = "conflict"
	CodeGone              ErrorCode = "gone"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
	CodeCanceled          ErrorCode = "canceled"
	CodeInternal          ErrorCode = "internal"
	CodeNotImplemented    ErrorCode = "not_implemented"
	CodeUnavailable       ErrorCode = "unavailable"
	CodeDeadlineExceeded  ErrorCode = "deadline_exceeded"
	CodeUnknown           ErrorCode = "unknown"
)

// CodeFromStatus classifies an HTTP status of a failed call.
// Statuses without a dedicated code map to CodeInvalidArgument (4xx),
// CodeInternal (5xx) or CodeUnknown.
func CodeFromStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidArgument
	case http.StatusUnauthorized:
		return CodeUnauthenticated
	case http.StatusForbidden:
		return CodePermissionDenied
	case http.StatusNotFound:
		return CodeNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusConflict:
		return CodeConflict
	case http.StatusGone:
		return CodeGone
	case http.StatusTooManyRequests:
		return CodeResourceExhausted
	case 499: // Client Closed Request (Nginx)
		return CodeCanceled
	case http.StatusNotImplemented:
		return CodeNotImplemented
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		return CodeUnavailable
	case http.StatusGatewayTimeout:
		return CodeDeadlineExceeded
	}
	switch {
	case status >= 400 && status < 500:
		return CodeInvalidArgument
	case status >= 500 && status < 600:
		return CodeInternal
	default:
		return CodeUnknown
	}
}

// TransportError is returned when the request could not be performed or the
// service answered with a non-2xx status.
//
// StatusCode is zero when no response was received; Err then holds the cause.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("patman: %s %s: %v", e.Method, e.URL, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("patman: %s %s: %d %s: %v", e.Method, e.URL, e.StatusCode, e.Status, e.Err)
	}
	return fmt.Sprintf("patman: %s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Status)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Code classifies the failure.
func (e *TransportError) Code() ErrorCode {
	if e.StatusCode == 0 {
		return CodeUnavailable
	}
	return CodeFromStatus(e.StatusCode)
}

// StatusOf returns the HTTP status carried by a TransportError in err's chain.
func StatusOf(err error) (int, bool) {
	var te *TransportError
	if errors.As(err, &te) && te.StatusCode != 0 {
		return te.StatusCode, true
	}
	return 0, false
}

// RootLabel names the top-level value in a Failure path.
const RootLabel = "#root"

// Failure describes one violated leaf of a response body.
type Failure struct {
	// Path is the dotted field path from the root, starting with RootLabel.
	Path string `json:"path"`
	// ExpectedType is the display name of the declared type.
	ExpectedType string `json:"expectedType"`
	// Value is the offending value. It is meaningless when Missing is set.
	Value any `json:"originalValue,omitempty"`
	// Missing reports that no value was present at Path.
	Missing bool `json:"originalValueIsUndefined,omitempty"`
}

const (
	maxPathLen    = 50
	maxTypeLen    = 50
	maxValueLen   = 50
	maxMessageLen = 200
	ellipsis      = "…"
)

// ValidationError is returned when a response body does not match the
// endpoint's schema. Failures holds every violated leaf untruncated; Error
// renders a bounded summary.
type ValidationError struct {
	Failures []Failure
	message  string
}

func newValidationError(failures []Failure) *ValidationError {
	return &ValidationError{
		Failures: failures,
		message:  renderFailures(failures),
	}
}

func (e *ValidationError) Error() string {
	return e.message
}

type displayFailure struct {
	Path          string  `json:"path"`
	ExpectedType  string  `json:"expectedType"`
	OriginalValue *string `json:"originalValue,omitempty"`
	Undefined     bool    `json:"originalValueIsUndefined,omitempty"`
}

// renderFailures produces indented JSON with cropped fields, capped at
// maxMessageLen characters plus a trailing ellipsis.
func renderFailures(failures []Failure) string {
	display := make([]displayFailure, len(failures))
	for i, f := range failures {
		d := displayFailure{
			Path:         cropStart(maxPathLen, f.Path),
			ExpectedType: cropEnd(maxTypeLen, f.ExpectedType),
			Undefined:    f.Missing,
		}
		if !f.Missing {
			v := cropEnd(maxValueLen, renderValue(f.Value))
			d.OriginalValue = &v
		}
		display[i] = d
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(display); err != nil {
		return fmt.Sprintf("%d validation failures", len(failures))
	}
	return cropEnd(maxMessageLen, strings.TrimSuffix(buf.String(), "\n"))
}

func renderValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// cropEnd keeps the leading max characters of s.
func cropEnd(max int, s string) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + ellipsis
}

// cropStart keeps the trailing max characters of s.
func cropStart(max int, s string) string {
	n := utf8.RuneCountInString(s)
	if n <= max {
		return s
	}
	r := []rune(s)
	return ellipsis + string(r[n-max:])
}

// errorKind names an error for transaction logs.
func errorKind(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return "TransportError"
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return "ValidationError"
	}
	return fmt.Sprintf("%T", err)
}
