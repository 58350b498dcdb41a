// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package testotel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Recorder records spans and metrics in memory.
type Recorder struct {
	Exporter       *tracetest.InMemoryExporter
	TracerProvider *trace.TracerProvider
	Reader         *metric.ManualReader
	MeterProvider  *metric.MeterProvider
}

// NewRecorder returns a Recorder whose spans are exported synchronously on
// end, so that they can be read back immediately.
func NewRecorder() *Recorder {
	exporter := tracetest.NewInMemoryExporter()
	reader := metric.NewManualReader()
	return &Recorder{
		Exporter:       exporter,
		TracerProvider: trace.NewTracerProvider(trace.WithSyncer(exporter)),
		Reader:         reader,
		MeterProvider:  metric.NewMeterProvider(metric.WithReader(reader)),
	}
}

// Spans returns the ended spans with their timestamps cleared for comparison.
func (r *Recorder) Spans() tracetest.SpanStubs {
	spans := r.Exporter.GetSpans()
	for i := range spans {
		clearTimestamps(&spans[i])
	}
	return spans
}

// RecordWithSpan executes the provided function with a span and returns the
// recorded span. The function should return true if it ended the span.
func RecordWithSpan(t testing.TB, fn func(oteltrace.Span) bool) tracetest.SpanStub {
	r := NewRecorder()
	_, span := r.TracerProvider.Tracer("test").Start(t.Context(), "test", oteltrace.WithSpanKind(oteltrace.SpanKindClient))

	if !fn(span) {
		span.End()
	}

	spans := r.Spans()
	require.Len(t, spans, 1)
	return spans[0]
}

func clearTimestamps(span *tracetest.SpanStub) {
	span.StartTime = time.Time{}
	span.EndTime = time.Time{}
	for i := range span.Events {
		span.Events[i].Time = time.Time{}
	}
}
