// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/instrumentation"
	"github.com/5war00p/openllmetry/instrumentation/vertexai"
	"github.com/5war00p/openllmetry/internal/metrics"
	"github.com/5war00p/openllmetry/internal/tracing"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	shutdownTimeout    = 5 * time.Second
)

// run sets up tracing and metrics, instruments the proxies and runs c.
// Telemetry is flushed before returning, also when c fails.
func run(ctx context.Context, c callCommand, stdout, stderr io.Writer) (err error) {
	f := c.flags()
	logger := newLogger(stderr, f.Debug)

	tr, err := tracing.NewTracingFromEnv(ctx, stderr)
	if err != nil {
		return fmt.Errorf("failed to create tracing: %w", err)
	}
	closers := []func(context.Context) error{tr.Shutdown}
	defer func() {
		err = errors.Join(err, shutdown(context.WithoutCancel(ctx), closers...))
	}()

	var promReader sdkmetric.Reader
	var registry *prometheus.Registry
	if f.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
		if promReader, err = otelprom.New(otelprom.WithRegisterer(registry)); err != nil {
			return fmt.Errorf("failed to create prometheus reader: %w", err)
		}
	}
	mp, err := metrics.NewMetricsFromEnv(ctx, stderr, promReader)
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}
	closers = append(closers, mp.Shutdown)

	if f.MetricsAddr != "" {
		lis, err := net.Listen("tcp", f.MetricsAddr)
		if err != nil {
			return fmt.Errorf("failed to listen for metrics: %w", err)
		}
		admin := startAdminServer(lis, logger, registry, f.Debug)
		closers = append(closers, admin.Shutdown)
	}

	traceConfig := instrumentation.NewTraceConfigFromEnv()
	if f.NoContent {
		traceConfig.TraceContent = false
	}
	inst := &vertexai.Instrumentor{}
	if err = inst.Instrument(
		instrumentation.WithTracerProvider(tr.TracerProvider),
		instrumentation.WithMeterProvider(mp),
		instrumentation.WithLogger(logger),
		instrumentation.WithTraceConfig(traceConfig),
	); err != nil {
		return fmt.Errorf("failed to instrument: %w", err)
	}
	defer func() { _ = inst.Uninstrument() }()

	clientConfig, err := f.clientConfig(ctx, tr.Propagator)
	if err != nil {
		return err
	}
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	logger.Debug("calling model", slog.String("model", f.Model), slog.String("backend", clientConfig.Backend.String()))
	return c.call(ctx, client, stdout)
}

// newLogger returns a text logger writing to stderr at INFO, or DEBUG when
// debug is set.
func newLogger(stderr io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

// shutdown runs closers concurrently and returns the first error.
func shutdown(ctx context.Context, closers ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	var g errgroup.Group
	for _, c := range closers {
		g.Go(func() error { return c(ctx) })
	}
	return g.Wait()
}

// clientConfig returns the genai client configuration. Requests carry the
// trace context of the calling span in headers injected by propagator.
func (c *clientFlags) clientConfig(ctx context.Context, propagator propagation.TextMapPropagator) (*genai.ClientConfig, error) {
	httpClient := &http.Client{Transport: tracing.Transport(nil, propagator)}
	cc := &genai.ClientConfig{
		APIKey:      c.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.BaseURL},
	}
	if c.Project == "" {
		return cc, nil
	}

	// A custom HTTP client must authenticate Vertex AI requests itself.
	var creds *google.Credentials
	var err error
	if c.CredentialsFile != "" {
		var raw []byte
		if raw, err = os.ReadFile(c.CredentialsFile); err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		creds, err = google.CredentialsFromJSON(ctx, raw, cloudPlatformScope)
	} else {
		creds, err = google.FindDefaultCredentials(ctx, cloudPlatformScope)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load Google Cloud credentials: %w", err)
	}
	cc.Backend = genai.BackendVertexAI
	cc.Project = c.Project
	cc.Location = c.Location
	cc.HTTPClient = oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, httpClient), creds.TokenSource)
	return cc, nil
}

// generateContentConfig returns the sampling parameters, or nil when none
// were given.
func (c *clientFlags) generateContentConfig() *genai.GenerateContentConfig {
	if c.Temperature == nil && c.TopP == nil && c.MaxOutputTokens == 0 {
		return nil
	}
	return &genai.GenerateContentConfig{
		Temperature:     c.Temperature,
		TopP:            c.TopP,
		MaxOutputTokens: c.MaxOutputTokens,
	}
}
