package patman

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

func TestCodeFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusBadRequest, CodeInvalidArgument},
		{http.StatusUnauthorized, CodeUnauthenticated},
		{http.StatusForbidden, CodePermissionDenied},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{http.StatusConflict, CodeConflict},
		{http.StatusGone, CodeGone},
		{http.StatusTooManyRequests, CodeResourceExhausted},
		{http.StatusTeapot, CodeInvalidArgument},
		{499, CodeCanceled},
		{http.StatusNotImplemented, CodeNotImplemented},
		{http.StatusBadGateway, CodeUnavailable},
		{http.StatusServiceUnavailable, CodeUnavailable},
		{http.StatusGatewayTimeout, CodeDeadlineExceeded},
		{http.StatusInternalServerError, CodeInternal},
		{599, CodeInternal},
		{302, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			if got := CodeFromStatus(tt.status); got != tt.want {
				t.Errorf("CodeFromStatus(%d) = %s, want %s", tt.status, got, tt.want)
			}
		})
	}
}

func TestTransportError(t *testing.T) {
	t.Run("with status", func(t *testing.T) {
		err := &TransportError{Method: "GET", URL: "https://x/api", StatusCode: 404, Status: "Not Found"}
		if got, want := err.Error(), "patman: GET https://x/api: 404 Not Found"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
		if err.Code() != CodeNotFound {
			t.Errorf("expected code %s, got %s", CodeNotFound, err.Code())
		}
	})

	t.Run("without response", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := &TransportError{Method: "POST", URL: "https://x", Err: cause}
		if !errors.Is(err, cause) {
			t.Error("expected TransportError to unwrap to its cause")
		}
		if err.Code() != CodeUnavailable {
			t.Errorf("expected code %s, got %s", CodeUnavailable, err.Code())
		}
		if !strings.Contains(err.Error(), "connection refused") {
			t.Errorf("expected cause in message, got %q", err.Error())
		}
	})
}

func TestStatusOf(t *testing.T) {
	wrapped := fmt.Errorf("listing: %w", &TransportError{StatusCode: 503})
	if status, ok := StatusOf(wrapped); !ok || status != 503 {
		t.Errorf("expected 503, got %d (ok=%v)", status, ok)
	}
	if _, ok := StatusOf(&TransportError{Err: errors.New("dial")}); ok {
		t.Error("expected no status for a network failure")
	}
	if _, ok := StatusOf(errors.New("other")); ok {
		t.Error("expected no status for a foreign error")
	}
}

func TestValidationError_Verbatim(t *testing.T) {
	err := newValidationError([]Failure{
		{Path: "#root.name", ExpectedType: "string", Value: json.Number("1")},
		{Path: "#root.id", ExpectedType: "int", Missing: true},
	})

	want := `[
  {
    "path": "#root.name",
    "expectedType": "string",
    "originalValue": "1"
  },
  {
    "path": "#root.id",
    "expectedType": "int",
    "originalValueIsUndefined": true
  }
]`
	if len(want) > maxMessageLen {
		t.Fatalf("fixture too long: %d", len(want))
	}
	if err.Error() != want {
		t.Errorf("message mismatch:\nExpected:\n%s\nActual:\n%s", want, err.Error())
	}
}

func TestValidationError_Bounded(t *testing.T) {
	var failures []Failure
	for i := range 20 {
		failures = append(failures, Failure{
			Path:         fmt.Sprintf("#root.items.%d.name", i),
			ExpectedType: "string",
			Value:        i,
		})
	}
	err := newValidationError(failures)

	msg := err.Error()
	if !strings.HasSuffix(msg, ellipsis) {
		t.Errorf("expected trailing ellipsis, got %q", msg)
	}
	if n := utf8.RuneCountInString(strings.TrimSuffix(msg, ellipsis)); n != maxMessageLen {
		t.Errorf("expected %d characters before the ellipsis, got %d", maxMessageLen, n)
	}
	if len(err.Failures) != 20 {
		t.Errorf("expected all 20 failures retained, got %d", len(err.Failures))
	}
}

func TestValidationError_CropsFields(t *testing.T) {
	longPath := RootLabel + strings.Repeat(".segment", 10)
	longType := "struct { " + strings.Repeat("Field string; ", 10) + "}"
	err := newValidationError([]Failure{{Path: longPath, ExpectedType: longType, Value: "x"}})

	if err.Failures[0].Path != longPath || err.Failures[0].ExpectedType != longType {
		t.Error("expected structured failures to stay untruncated")
	}

	wantPath := cropStart(maxPathLen, longPath)
	if !strings.HasPrefix(wantPath, ellipsis) || !strings.HasSuffix(wantPath, ".segment") {
		t.Errorf("unexpected cropped path %q", wantPath)
	}
	if utf8.RuneCountInString(wantPath) != maxPathLen+1 {
		t.Errorf("expected %d characters, got %d", maxPathLen+1, utf8.RuneCountInString(wantPath))
	}
	if !strings.Contains(renderFailures(err.Failures), wantPath) {
		t.Error("expected rendered failures to contain the cropped path")
	}
}

func TestCrop(t *testing.T) {
	tests := []struct {
		name string
		fn   func(int, string) string
		max  int
		in   string
		want string
	}{
		{"end short", cropEnd, 5, "abc", "abc"},
		{"end exact", cropEnd, 3, "abc", "abc"},
		{"end long", cropEnd, 3, "abcdef", "abc…"},
		{"start short", cropStart, 5, "abc", "abc"},
		{"start long", cropStart, 3, "abcdef", "…def"},
		{"multibyte", cropEnd, 2, "ééé", "éé…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.max, tt.in); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorKind(t *testing.T) {
	if got := errorKind(&TransportError{}); got != "TransportError" {
		t.Errorf("expected TransportError, got %s", got)
	}
	if got := errorKind(fmt.Errorf("x: %w", newValidationError(nil))); got != "ValidationError" {
		t.Errorf("expected ValidationError, got %s", got)
	}
	if got := errorKind(errors.New("x")); got != "*errors.errorString" {
		t.Errorf("expected *errors.errorString, got %s", got)
	}
}
