// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"context"
	"iter"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/instrumentation"
	"github.com/5war00p/openllmetry/internal/testing/testotel"
	"github.com/5war00p/openllmetry/languagemodels"
)

// instrument activates an Instrumentor recording into a fresh Recorder for
// the duration of the test.
func instrument(t *testing.T, opts ...instrumentation.Option) *testotel.Recorder {
	t.Helper()
	return instrumentWithEnv(t, append([]instrumentation.Option{
		instrumentation.WithTraceConfig(instrumentation.NewTraceConfig()),
	}, opts...)...)
}

// instrumentWithEnv is like instrument but reads the TraceConfig from the
// environment unless opts set one.
func instrumentWithEnv(t *testing.T, opts ...instrumentation.Option) *testotel.Recorder {
	t.Helper()
	r := testotel.NewRecorder()
	inst := &Instrumentor{}
	require.NoError(t, inst.Instrument(append([]instrumentation.Option{
		instrumentation.WithTracerProvider(r.TracerProvider),
		instrumentation.WithMeterProvider(r.MeterProvider),
		instrumentation.WithLogger(slog.New(slog.DiscardHandler)),
	}, opts...)...))
	t.Cleanup(func() { _ = inst.Uninstrument() })
	return r
}

func attrsOf(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(span.Attributes))
	for _, kv := range span.Attributes {
		m[kv.Key] = kv.Value
	}
	return m
}

func genaiText(texts ...string) *genai.GenerateContentResponse {
	resp := &genai.GenerateContentResponse{}
	for _, text := range texts {
		resp.Candidates = append(resp.Candidates, &genai.Candidate{Content: genai.NewContentFromText(text, genai.RoleModel)})
	}
	return resp
}

// fakeModels implements GenerativeModel.
type fakeModels struct {
	resp   *genai.GenerateContentResponse
	err    error
	chunks []*genai.GenerateContentResponse
	// streamErr is yielded after chunks.
	streamErr error
	ctx       context.Context
	calls     int
}

func (f *fakeModels) GenerateContent(ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.ctx = ctx
	f.calls++
	return f.resp, f.err
}

func (f *fakeModels) GenerateContentStream(ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.ctx = ctx
	f.calls++
	return func(yield func(*genai.GenerateContentResponse, error) bool) {
		for _, c := range f.chunks {
			if !yield(c, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield(nil, f.streamErr)
		}
	}
}

// fakeChat implements ChatSession.
type fakeChat struct {
	fakeModels
	sent [][]genai.Part
}

func (f *fakeChat) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	f.sent = append(f.sent, parts)
	return f.GenerateContent(ctx, "", nil, nil)
}

func (f *fakeChat) SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	f.sent = append(f.sent, parts)
	return f.GenerateContentStream(ctx, "", nil, nil)
}

func (f *fakeChat) History(bool) []*genai.Content { return nil }

// fakeTextModel implements languagemodels.TextGenerationModel.
type fakeTextModel struct {
	resp   *languagemodels.TextGenerationResponse
	err    error
	chunks []string
	// streamErr is yielded after chunks.
	streamErr error
	// release, when set, holds Predict until it is closed.
	release chan struct{}
	ctx     context.Context
}

func (f *fakeTextModel) Model() string { return "text-bison" }

func (f *fakeTextModel) Predict(ctx context.Context, _ string, _ *languagemodels.PredictParams) (*languagemodels.TextGenerationResponse, error) {
	f.ctx = ctx
	if f.release != nil {
		<-f.release
	}
	return f.resp, f.err
}

func (f *fakeTextModel) PredictAsync(ctx context.Context, prompt string, params *languagemodels.PredictParams) languagemodels.Future[*languagemodels.TextGenerationResponse] {
	return languagemodels.Go(ctx, func(ctx context.Context) (*languagemodels.TextGenerationResponse, error) {
		return f.Predict(ctx, prompt, params)
	})
}

func (f *fakeTextModel) PredictStreaming(ctx context.Context, _ string, _ *languagemodels.PredictParams) iter.Seq2[*languagemodels.TextGenerationResponse, error] {
	f.ctx = ctx
	return func(yield func(*languagemodels.TextGenerationResponse, error) bool) {
		for _, c := range f.chunks {
			if !yield(&languagemodels.TextGenerationResponse{Text: c}, nil) {
				return
			}
		}
		if f.streamErr != nil {
			yield(nil, f.streamErr)
		}
	}
}

func (f *fakeTextModel) PredictStreamingAsync(ctx context.Context, prompt string, params *languagemodels.PredictParams) languagemodels.Stream[*languagemodels.TextGenerationResponse] {
	return languagemodels.StreamFromSeq(f.PredictStreaming(ctx, prompt, params))
}
