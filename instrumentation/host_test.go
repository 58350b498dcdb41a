// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package instrumentation

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
)

type fakeInstrumentor struct {
	deps           []string
	instrumentErr  error
	instrumented   int
	uninstrumented int
}

func (f *fakeInstrumentor) InstrumentationDependencies() []string { return f.deps }

func (f *fakeInstrumentor) Instrument(...Option) error {
	if f.instrumentErr != nil {
		return f.instrumentErr
	}
	f.instrumented++
	return nil
}

func (f *fakeInstrumentor) Uninstrument() error {
	f.uninstrumented++
	return nil
}

func TestHost_InstrumentAll(t *testing.T) {
	linked := &fakeInstrumentor{deps: []string{"google.golang.org/genai"}}
	missing := &fakeInstrumentor{deps: []string{"example.com/absent"}}
	failing := &fakeInstrumentor{instrumentErr: errors.New("boom")}

	h := NewHost(linked, missing, failing)
	h.linkedModules = func() map[string]struct{} {
		return map[string]struct{}{"google.golang.org/genai": {}}
	}

	err := h.InstrumentAll(WithLogger(slog.New(slog.DiscardHandler)))
	require.ErrorContains(t, err, "boom")
	require.Equal(t, 1, linked.instrumented)
	require.Zero(t, missing.instrumented)

	// A second call does not re-instrument the active ones.
	_ = h.InstrumentAll()
	require.Equal(t, 1, linked.instrumented)

	require.NoError(t, h.UninstrumentAll())
	require.Equal(t, 1, linked.uninstrumented)
	require.Zero(t, missing.uninstrumented)
	require.Zero(t, failing.uninstrumented)

	// Nothing active anymore.
	require.NoError(t, h.UninstrumentAll())
	require.Equal(t, 1, linked.uninstrumented)
}

func TestMissingDependencies(t *testing.T) {
	linked := map[string]struct{}{"a": {}, "b": {}}
	require.Empty(t, missingDependencies([]string{"a", "b"}, linked))
	require.Equal(t, []string{"c"}, missingDependencies([]string{"a", "c"}, linked))
	require.Empty(t, missingDependencies(nil, linked))
}

func TestBuildInfoModules(t *testing.T) {
	modules := buildInfoModules()
	require.NotNil(t, modules)
	_, ok := modules["example.com/never-linked"]
	require.False(t, ok)
}

func TestNewOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvTraceContent, "false")
		o := NewOptions()
		require.Equal(t, otel.GetTracerProvider(), o.TracerProvider)
		require.Equal(t, otel.GetMeterProvider(), o.MeterProvider)
		require.Equal(t, slog.Default(), o.Logger)
		require.False(t, o.TraceConfig.TraceContent)
	})

	t.Run("overrides", func(t *testing.T) {
		tp := trace.NewTracerProvider()
		cfg := &TraceConfig{TraceContent: true, Base64DataMaxLength: 1}
		o := NewOptions(WithTracerProvider(tp), WithTraceConfig(cfg))
		require.Same(t, tp, o.TracerProvider)
		require.Same(t, cfg, o.TraceConfig)
	})

	t.Run("logr", func(t *testing.T) {
		var buf bytes.Buffer
		l := funcr.New(func(prefix, args string) {
			buf.WriteString(args)
		}, funcr.Options{})
		o := NewOptions(WithLogr(l))
		o.Logger.Info("hello", slog.String("k", "v"))
		require.Contains(t, buf.String(), `"msg"="hello"`)
		require.Contains(t, buf.String(), `"k"="v"`)
	})
}
