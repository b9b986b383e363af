package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/broady/patman"
	"github.com/broady/patman/testutil"
)

func bindWith(t *testing.T, u *testutil.Upstream, i patman.Interceptor) patman.CallFunc[patman.NoArgs, []string] {
	t.Helper()
	svc, err := patman.NewService(u.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	client := patman.NewClient().WithInterceptor(i)
	return patman.Bind(client, svc, patman.NewEndpoint[patman.NoArgs, []string]("GET", "/api/"))
}

func TestAccessLog_Success(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	upstream := testutil.NewUpstream(t).RespondJSON(http.StatusOK, []string{"a"})

	_, err := bindWith(t, upstream, AccessLog(logger))(context.Background(), patman.NoArgs{})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "call started") {
		t.Error("expected 'call started' in log output")
	}
	if !strings.Contains(logOutput, "call completed") {
		t.Error("expected 'call completed' in log output")
	}
	if !strings.Contains(logOutput, `"status":200`) {
		t.Error("expected status in log output")
	}
	if !strings.Contains(logOutput, upstream.URL+"/api/") {
		t.Error("expected url in log output")
	}
}

func TestAccessLog_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	upstream := testutil.NewUpstream(t).RespondText(http.StatusBadGateway, "down")

	_, err := bindWith(t, upstream, AccessLog(logger))(context.Background(), patman.NoArgs{})
	if err == nil {
		t.Fatal("expected error")
	}

	logOutput := buf.String()
	if !strings.Contains(logOutput, "call failed") {
		t.Error("expected 'call failed' in log output")
	}
	if !strings.Contains(logOutput, "502 Bad Gateway") {
		t.Error("expected error message in log output")
	}
	if !strings.Contains(logOutput, "duration") {
		t.Error("expected duration in log output")
	}
}

func TestAccessLog_NilLogger(t *testing.T) {
	if AccessLog(nil) == nil {
		t.Error("expected non-nil interceptor")
	}
}
