// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/internal/metrics"
	"github.com/5war00p/openllmetry/internal/testing/testotel"
)

func newTestSpan(t *testing.T) (*testotel.Recorder, *callSpan, *bytes.Buffer) {
	t.Helper()
	r := testotel.NewRecorder()
	var logs bytes.Buffer
	_, span := r.TracerProvider.Tracer("test").Start(t.Context(), "test")
	return r, &callSpan{
		span:    span,
		logger:  slog.New(slog.NewTextHandler(&logs, nil)),
		metrics: metrics.NewClient(r.MeterProvider.Meter("test"), metrics.SystemVertexAI).StartCall(metrics.OperationChat, "gemini"),
	}, &logs
}

func TestCallSpan_Complete(t *testing.T) {
	r, s, logs := newTestSpan(t)

	s.complete(t.Context(), func() (*Response, error) {
		return TextResponse("Hi", &Usage{Total: 3, Completion: 1, Prompt: 2}), nil
	})
	// Ended spans ignore further completion.
	s.complete(t.Context(), func() (*Response, error) { return StringResponse("again"), nil })
	s.endOnError(t.Context(), errors.New("late"))

	spans := r.Spans()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Ok, spans[0].Status.Code)
	require.Equal(t, attribute.StringValue("Hi"), attrsOf(spans[0])["llm.completions.0.content"])
	require.Equal(t, attribute.Int64Value(3), attrsOf(spans[0])["llm.usage.total_tokens"])
	require.Empty(t, spans[0].Events)
	require.Empty(t, logs.String())

	count, sum := testotel.GetHistogramValues(t, r.Reader, "gen_ai.client.token.usage", attribute.NewSet(
		attribute.String("gen_ai.operation.name", metrics.OperationChat),
		attribute.String("gen_ai.system.name", metrics.SystemVertexAI),
		attribute.String("gen_ai.request.model", "gemini"),
		attribute.String("gen_ai.token.type", "input"),
	))
	require.Equal(t, uint64(1), count)
	require.Equal(t, 2.0, sum)
}

func TestCallSpan_CompleteEmpty(t *testing.T) {
	r, s, _ := newTestSpan(t)

	s.complete(t.Context(), func() (*Response, error) { return nil, nil })

	spans := r.Spans()
	require.Len(t, spans, 1)
	require.Equal(t, codes.Unset, spans[0].Status.Code)
	require.Empty(t, spans[0].Attributes)
}

func TestCallSpan_CompleteConversionFailure(t *testing.T) {
	tests := []struct {
		name    string
		convert func() (*Response, error)
		logged  string
	}{
		{
			name:    "error",
			convert: func() (*Response, error) { return nil, errors.New("bad response") },
			logged:  "bad response",
		},
		{
			name:    "panic",
			convert: func() (*Response, error) { panic("boom") },
			logged:  "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, s, logs := newTestSpan(t)

			require.NotPanics(t, func() { s.complete(t.Context(), tt.convert) })

			spans := r.Spans()
			require.Len(t, spans, 1)
			require.Equal(t, codes.Ok, spans[0].Status.Code)
			require.Contains(t, logs.String(), warnResponseAttributes)
			require.Contains(t, logs.String(), tt.logged)
			require.Contains(t, logs.String(), "level=WARN")
		})
	}
}

func TestCallSpan_RecordRequest(t *testing.T) {
	r, s, logs := newTestSpan(t)

	s.recordRequest(func() ([]attribute.KeyValue, error) {
		return []attribute.KeyValue{attribute.String("llm.request.model", "gemini")}, nil
	})
	s.recordRequest(func() ([]attribute.KeyValue, error) { panic("boom") })
	s.end(t.Context())

	spans := r.Spans()
	require.Len(t, spans, 1)
	require.Equal(t, []attribute.KeyValue{attribute.String("llm.request.model", "gemini")}, spans[0].Attributes)
	require.Contains(t, logs.String(), warnRequestAttributes)
}

func TestCallSpan_EndOnError(t *testing.T) {
	r, s, _ := newTestSpan(t)

	err := fmt.Errorf("generate: %w", genai.APIError{Code: 429, Message: "quota exceeded", Status: "RESOURCE_EXHAUSTED"})
	s.endOnError(t.Context(), err)
	s.complete(t.Context(), func() (*Response, error) { return StringResponse("ignored"), nil })

	spans := r.Spans()
	require.Len(t, spans, 1)
	require.Equal(t, sdktrace.Status{Code: codes.Error, Description: err.Error()}, spans[0].Status)
	require.Len(t, spans[0].Events, 1)
	require.Equal(t, "exception", spans[0].Events[0].Name)
	require.Equal(t, []attribute.KeyValue{
		attribute.String("exception.type", "RateLimitError"),
		attribute.String("exception.message", err.Error()),
	}, spans[0].Events[0].Attributes)

	count, _ := testotel.GetHistogramValues(t, r.Reader, "gen_ai.client.operation.duration", attribute.NewSet(
		attribute.String("gen_ai.operation.name", metrics.OperationChat),
		attribute.String("gen_ai.system.name", metrics.SystemVertexAI),
		attribute.String("gen_ai.request.model", "gemini"),
		attribute.String("error.type", "RateLimitError"),
	))
	require.Equal(t, uint64(1), count)
}

func TestCallSpan_CompleteConcurrently(t *testing.T) {
	r, s, _ := newTestSpan(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.complete(t.Context(), func() (*Response, error) {
				return TextResponse("Hi", &Usage{Total: 3, Completion: 1, Prompt: 2}), nil
			})
		}()
	}
	wg.Wait()

	require.Len(t, r.Spans(), 1)
	count, sum := testotel.GetHistogramValues(t, r.Reader, "gen_ai.client.token.usage", attribute.NewSet(
		attribute.String("gen_ai.operation.name", metrics.OperationChat),
		attribute.String("gen_ai.system.name", metrics.SystemVertexAI),
		attribute.String("gen_ai.request.model", "gemini"),
		attribute.String("gen_ai.token.type", "input"),
	))
	require.Equal(t, uint64(1), count)
	require.Equal(t, 2.0, sum)
}

func TestCallSpan_EndOnErrorUnclassified(t *testing.T) {
	r, s, _ := newTestSpan(t)

	s.endOnError(t.Context(), errors.New("connection reset"))

	spans := r.Spans()
	require.Len(t, spans, 1)
	require.Contains(t, spans[0].Events[0].Attributes, attribute.String("exception.type", "Error"))

	count, _ := testotel.GetHistogramValues(t, r.Reader, "gen_ai.client.operation.duration", attribute.NewSet(
		attribute.String("gen_ai.operation.name", metrics.OperationChat),
		attribute.String("gen_ai.system.name", metrics.SystemVertexAI),
		attribute.String("gen_ai.request.model", "gemini"),
		attribute.String("error.type", metrics.ErrorTypeFallback),
	))
	require.Equal(t, uint64(1), count)
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{err: errors.New("plain"), expected: "Error"},
		{err: genai.APIError{Code: 400}, expected: "BadRequestError"},
		{err: &genai.APIError{Code: 401}, expected: "AuthenticationError"},
		{err: genai.APIError{Code: 403}, expected: "PermissionDeniedError"},
		{err: fmt.Errorf("wrapped: %w", genai.APIError{Code: 404}), expected: "NotFoundError"},
		{err: genai.APIError{Code: 429}, expected: "RateLimitError"},
		{err: genai.APIError{Code: 500}, expected: "InternalServerError"},
		{err: genai.APIError{Code: 502}, expected: "InternalServerError"},
		{err: genai.APIError{Code: 503}, expected: "InternalServerError"},
		{err: genai.APIError{Code: 418}, expected: "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			require.Equal(t, tt.expected, errorType(tt.err))
		})
	}
}
