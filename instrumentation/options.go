// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package instrumentation

import (
	"log/slog"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Options are the settings shared by every Instrumentor.
type Options struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Logger         *slog.Logger
	TraceConfig    *TraceConfig
}

// Option configures Options.
type Option func(*Options)

// WithTracerProvider sets the provider spans are created from. The global
// provider is used when unset.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Options) { o.TracerProvider = tp }
}

// WithMeterProvider sets the provider metrics are recorded to. The global
// provider is used when unset.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *Options) { o.MeterProvider = mp }
}

// WithLogger sets the logger used for extraction warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithLogr is like WithLogger for hosts that carry a logr.Logger.
func WithLogr(l logr.Logger) Option {
	return func(o *Options) { o.Logger = slog.New(logr.ToSlogHandler(l)) }
}

// WithTraceConfig overrides the TraceConfig otherwise read from the
// environment.
func WithTraceConfig(c *TraceConfig) Option {
	return func(o *Options) { o.TraceConfig = c }
}

// NewOptions applies opts over the defaults: global providers, slog.Default
// and NewTraceConfigFromEnv.
func NewOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.TraceConfig == nil {
		o.TraceConfig = NewTraceConfigFromEnv()
	}
	return o
}
