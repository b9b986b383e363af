package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/broady/patman"
	"github.com/broady/patman/config"
	"github.com/broady/patman/middleware"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type CallCmd struct {
	Service  string   `arg:"" help:"Service name."`
	Endpoint string   `arg:"" help:"Endpoint name."`
	Config   string   `help:"Path to the services and endpoints file." short:"c" required:"" type:"existingfile"`
	Params   []string `help:"Extra query parameter as key=value. Repeatable." short:"p" name:"param" sep:"none"`
	Trace    bool     `help:"Write OpenTelemetry spans to stderr."`
	Verbose  bool     `help:"Log each call at info level." short:"v"`
}

func (c *CallCmd) Run(g *Globals) error {
	params, err := parseParams(c.Params)
	if err != nil {
		return err
	}
	opts, err := config.LoadOptions()
	if err != nil {
		return err
	}
	f, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	services, err := f.BuildServices()
	if err != nil {
		return err
	}
	endpoints, err := f.BuildEndpoints()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := opts.Client(g.Stderr)
	if c.Trace {
		tp, err := newTracerProvider(g.Stderr)
		if err != nil {
			return err
		}
		defer tp.Shutdown(ctx)
		transport := patman.NewHTTPTransport(&http.Client{Timeout: opts.Timeout}).
			WithTracing(otelhttp.WithTracerProvider(tp))
		client.WithTransport(transport).WithInterceptor(middleware.Tracing(tp))
	}
	if c.Verbose {
		client.WithInterceptor(middleware.AccessLog(opts.Logger(g.Stderr)))
	}

	m, err := patman.Combine(client, services, endpoints)
	if err != nil {
		return err
	}
	call, err := m.Lookup(c.Service, c.Endpoint)
	if err != nil {
		return err
	}
	res, err := call.Invoke(ctx, params)
	if err != nil {
		return err
	}

	if s, ok := res.Body.(string); ok {
		_, err = fmt.Fprintln(g.Stdout, s)
		return err
	}
	enc := json.NewEncoder(g.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res.Body)
}

// parseParams turns key=value pairs into params, keeping their order.
func parseParams(pairs []string) (patman.Params, error) {
	var params patman.Params
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q (want key=value)", pair)
		}
		params = params.Add(key, value)
	}
	return params, nil
}

func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}
