// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package testotel provides test utilities for OpenTelemetry tests:
// in-memory recording, metric lookups and an OTLP/HTTP trace collector.
package testotel

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	collecttracev1 "go.opentelemetry.io/proto/otlp/collector/trace/v1"
	tracev1 "go.opentelemetry.io/proto/otlp/trace/v1"
	"google.golang.org/protobuf/proto"
)

// exportTimeout bounds the wait for one export. It must exceed
// OTEL_BSP_SCHEDULE_DELAY set by StartCollector.
const exportTimeout = time.Second

// Export is one OTLP trace export received by a Collector.
type Export struct {
	Header      http.Header
	ServiceName string
	Spans       []*tracev1.Span
}

// Collector receives OTLP/HTTP protobuf trace exports.
type Collector struct {
	exports chan *Export
}

// StartCollector starts a Collector and points the OTEL_* environment of t
// at it. Metrics export is disabled so only traces arrive. The collector
// stops when t ends.
func StartCollector(t testing.TB) *Collector {
	c := &Collector{exports: make(chan *Export, 16)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/traces", c.handleTraces)
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)

	for k, v := range map[string]string{
		"OTEL_EXPORTER_OTLP_ENDPOINT": s.URL,
		"OTEL_EXPORTER_OTLP_PROTOCOL": "http/protobuf",
		"OTEL_SERVICE_NAME":           "vertexai-trace-test",
		"OTEL_BSP_SCHEDULE_DELAY":     "100",
		"OTEL_METRICS_EXPORTER":       "none",
	} {
		t.Setenv(k, v)
	}
	return c
}

func (c *Collector) handleTraces(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req collecttracev1.ExportTraceServiceRequest
	if err = proto.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	export := &Export{Header: r.Header.Clone()}
	for _, rs := range req.ResourceSpans {
		for _, kv := range rs.GetResource().GetAttributes() {
			if kv.Key == "service.name" {
				export.ServiceName = kv.Value.GetStringValue()
			}
		}
		for _, ss := range rs.ScopeSpans {
			export.Spans = append(export.Spans, ss.Spans...)
		}
	}
	select {
	case c.exports <- export:
		w.WriteHeader(http.StatusOK)
	case <-r.Context().Done():
	}
}

// Next returns the next export, or nil if none arrives in time.
func (c *Collector) Next() *Export {
	select {
	case e := <-c.exports:
		return e
	case <-time.After(exportTimeout):
		return nil
	}
}

// NextSpan returns the first span of the next export, or nil if none
// arrives in time.
func (c *Collector) NextSpan() *tracev1.Span {
	if e := c.Next(); e != nil && len(e.Spans) > 0 {
		return e.Spans[0]
	}
	return nil
}

// RequireSpans reads exports until n spans arrived and returns them in
// export order.
func (c *Collector) RequireSpans(t testing.TB, n int) []*tracev1.Span {
	t.Helper()
	var spans []*tracev1.Span
	for len(spans) < n {
		e := c.Next()
		require.NotNil(t, e, "received %d of %d spans", len(spans), n)
		spans = append(spans, e.Spans...)
	}
	require.Len(t, spans, n)
	return spans
}
