// Package config loads patman settings from the environment and from YAML
// files describing services and endpoints.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/broady/patman"
)

// Options holds process-level settings read from the environment.
type Options struct {
	// Debug enables the transaction log.
	Debug bool
	// ShowAuthHeaders prints Authorization values in the transaction log.
	ShowAuthHeaders bool
	// LogFormat is "text" or "json".
	LogFormat string
	// Timeout bounds each HTTP request. Zero means no timeout.
	Timeout time.Duration
}

// LoadOptions loads options from environment variables.
func LoadOptions() (*Options, error) {
	opts := &Options{
		Debug:           getEnvBool("PATMAN_DEBUG", false),
		ShowAuthHeaders: getEnvBool("PATMAN_SHOW_AUTH_HEADERS", false),
		LogFormat:       strings.ToLower(getEnv("PATMAN_LOG_FORMAT", "text")),
		Timeout:         getEnvDuration("PATMAN_TIMEOUT", 30*time.Second),
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return opts, nil
}

// Validate checks the options.
func (o *Options) Validate() error {
	if o.LogFormat != "text" && o.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q (want text or json)", o.LogFormat)
	}
	if o.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %v", o.Timeout)
	}
	return nil
}

// Logger returns a logger writing to w in the configured format. It logs at
// debug level when Debug is set and at info level otherwise.
func (o *Options) Logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if o.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// Client returns a patman client configured from o whose logs go to w.
func (o *Options) Client(w io.Writer) *patman.Client {
	transport := patman.NewHTTPTransport(&http.Client{Timeout: o.Timeout})
	client := patman.NewClient().
		WithTransport(transport).
		WithLogger(o.Logger(w))
	if o.ShowAuthHeaders {
		client.WithShowAuthHeaders()
	}
	return client
}

// getEnv returns an environment variable or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
