// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package metrics

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/contrib/exporters/autoexport"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// defaultServiceName is the service.name used when OTEL_SERVICE_NAME and
// OTEL_RESOURCE_ATTRIBUTES do not set one.
const defaultServiceName = "vertexai-trace"

// NewMetricsFromEnv configures an OpenTelemetry MeterProvider based on environment variables.
// When extraReader is non-nil, it is always attached, e.g. a Prometheus exporter serving a
// scrape endpoint. Console or OTLP export is added if enabled via environment variables.
//
// The stdout parameter directs output for the console exporter (use os.Stdout in production).
// Environment variables checked directly include:
//   - OTEL_SDK_DISABLED: If "true", disables OTEL exporters.
//   - OTEL_METRICS_EXPORTER: Supported values are "none", "console", "prometheus", "otlp".
//   - OTEL_EXPORTER_OTLP_ENDPOINT or OTEL_EXPORTER_OTLP_METRICS_ENDPOINT: Enables OTLP if set.
func NewMetricsFromEnv(ctx context.Context, stdout io.Writer, extraReader sdkmetric.Reader) (*sdkmetric.MeterProvider, error) {
	var options []sdkmetric.Option
	if extraReader != nil {
		options = append(options, sdkmetric.WithReader(extraReader))
	}

	if os.Getenv("OTEL_SDK_DISABLED") != "true" {
		exporter := os.Getenv("OTEL_METRICS_EXPORTER")
		hasOTLPEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" ||
			os.Getenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT") != ""

		if exporter == "console" || (exporter != "none" && exporter != "prometheus" && hasOTLPEndpoint) {
			res, err := newResource(ctx)
			if err != nil {
				return nil, err
			}
			options = append(options, sdkmetric.WithResource(res))

			if exporter == "console" {
				exp, err := newConsoleExporter(stdout)
				if err != nil {
					return nil, err
				}
				options = append(options, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)))
			} else {
				// autoexport handles the PeriodicReader for OTLP.
				otelReader, err := autoexport.NewMetricReader(ctx)
				if err != nil {
					return nil, err
				}
				options = append(options, sdkmetric.WithReader(otelReader))
			}
		}
	}

	return sdkmetric.NewMeterProvider(options...), nil
}

// newResource merges the SDK defaults, the fallback service name and the
// environment, in increasing priority.
func newResource(ctx context.Context) (*resource.Resource, error) {
	envRes, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, err
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(semconv.ServiceName(defaultServiceName)))
	if err != nil {
		return nil, err
	}
	return resource.Merge(res, envRes)
}
