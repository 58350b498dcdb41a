// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package metrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const envTemporalityPreference = "OTEL_EXPORTER_OTLP_METRICS_TEMPORALITY_PREFERENCE"

// temporalities are the supported values of envTemporalityPreference, lower case.
var temporalities = map[string]metricdata.Temporality{
	"":           metricdata.CumulativeTemporality,
	"cumulative": metricdata.CumulativeTemporality,
	"delta":      metricdata.DeltaTemporality,
}

// consoleExporter writes metrics as JSON and drops collections without a
// single metric, which a short CLI run produces on every idle interval.
type consoleExporter struct {
	metric.Exporter
	temporality metricdata.Temporality
}

func newConsoleExporter(w io.Writer) (metric.Exporter, error) {
	pref := os.Getenv(envTemporalityPreference)
	temporality, ok := temporalities[strings.ToLower(pref)]
	if !ok {
		return nil, fmt.Errorf("unsupported %s value %q: use cumulative or delta", envTemporalityPreference, pref)
	}
	delegate, err := stdoutmetric.New(stdoutmetric.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout metric exporter: %w", err)
	}
	return &consoleExporter{Exporter: delegate, temporality: temporality}, nil
}

func (e *consoleExporter) Export(ctx context.Context, rm *metricdata.ResourceMetrics) error {
	if rm == nil || !slices.ContainsFunc(rm.ScopeMetrics, hasMetrics) {
		return nil
	}
	return e.Exporter.Export(ctx, rm)
}

func (e *consoleExporter) Temporality(metric.InstrumentKind) metricdata.Temporality {
	return e.temporality
}

func hasMetrics(sm metricdata.ScopeMetrics) bool { return len(sm.Metrics) > 0 }
