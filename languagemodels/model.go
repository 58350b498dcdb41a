// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package languagemodels provides a text-prediction surface over the Gemini
// models: a prompt goes in, a TextGenerationResponse comes out, in blocking,
// streaming and asynchronous forms.
package languagemodels

import (
	"context"
	"iter"
	"strings"

	"google.golang.org/genai"
)

// TextGenerationModel predicts text for a prompt.
type TextGenerationModel interface {
	// Model returns the model name requests are sent to.
	Model() string
	// Predict blocks until the full response is available.
	Predict(ctx context.Context, prompt string, params *PredictParams) (*TextGenerationResponse, error)
	// PredictAsync returns immediately. The call runs in the background and
	// its response is available from the Future.
	PredictAsync(ctx context.Context, prompt string, params *PredictParams) Future[*TextGenerationResponse]
	// PredictStreaming yields the response in chunks as they arrive.
	PredictStreaming(ctx context.Context, prompt string, params *PredictParams) iter.Seq2[*TextGenerationResponse, error]
	// PredictStreamingAsync is PredictStreaming as a Stream.
	PredictStreamingAsync(ctx context.Context, prompt string, params *PredictParams) Stream[*TextGenerationResponse]
}

// PredictParams are the optional sampling parameters of a prediction. Nil
// fields are left to the model defaults.
type PredictParams struct {
	Temperature      *float64
	MaxOutputTokens  *int64
	TopP             *float64
	TopK             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	CandidateCount   int
}

// Usage is the token accounting of a response.
type Usage struct {
	PromptTokens     int64
	CandidatesTokens int64
	TotalTokens      int64
}

// TextGenerationResponse is the result of a prediction or one chunk of a
// streamed prediction.
type TextGenerationResponse struct {
	// Text is the text of the first candidate.
	Text string
	// Candidates holds the text of every candidate when more than one was
	// requested.
	Candidates []string
	// Usage is nil when the model did not report token counts.
	Usage *Usage
	// Raw is the response the prediction was built from.
	Raw *genai.GenerateContentResponse
}

// String returns the text of the first candidate.
func (r *TextGenerationResponse) String() string {
	if r == nil {
		return ""
	}
	return r.Text
}

// ContentGenerator is the subset of genai.Models used for predictions.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type genaiTextModel struct {
	models ContentGenerator
	model  string
}

// NewTextGenerationModel returns a TextGenerationModel that sends prompts to
// model through models, usually a genai.Client's Models.
func NewTextGenerationModel(models ContentGenerator, model string) TextGenerationModel {
	return &genaiTextModel{models: models, model: model}
}

func (m *genaiTextModel) Model() string { return m.model }

func (m *genaiTextModel) Predict(ctx context.Context, prompt string, params *PredictParams) (*TextGenerationResponse, error) {
	resp, err := m.models.GenerateContent(ctx, m.model, genai.Text(prompt), params.generateContentConfig())
	if err != nil {
		return nil, err
	}
	return NewTextGenerationResponse(resp), nil
}

func (m *genaiTextModel) PredictAsync(ctx context.Context, prompt string, params *PredictParams) Future[*TextGenerationResponse] {
	return Go(ctx, func(ctx context.Context) (*TextGenerationResponse, error) {
		return m.Predict(ctx, prompt, params)
	})
}

func (m *genaiTextModel) PredictStreaming(ctx context.Context, prompt string, params *PredictParams) iter.Seq2[*TextGenerationResponse, error] {
	return func(yield func(*TextGenerationResponse, error) bool) {
		for resp, err := range m.models.GenerateContentStream(ctx, m.model, genai.Text(prompt), params.generateContentConfig()) {
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(NewTextGenerationResponse(resp), nil) {
				return
			}
		}
	}
}

func (m *genaiTextModel) PredictStreamingAsync(ctx context.Context, prompt string, params *PredictParams) Stream[*TextGenerationResponse] {
	return StreamFromSeq(m.PredictStreaming(ctx, prompt, params))
}

// NewTextGenerationResponse converts a genai response. Thought parts are not
// part of the text.
func NewTextGenerationResponse(resp *genai.GenerateContentResponse) *TextGenerationResponse {
	out := &TextGenerationResponse{Raw: resp}
	if resp == nil {
		return out
	}
	for _, c := range resp.Candidates {
		out.Candidates = append(out.Candidates, candidateText(c))
	}
	if len(out.Candidates) > 0 {
		out.Text = out.Candidates[0]
	}
	if len(out.Candidates) < 2 {
		out.Candidates = nil
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = &Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CandidatesTokens: int64(u.CandidatesTokenCount),
			TotalTokens:      int64(u.TotalTokenCount),
		}
	}
	return out
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

func (p *PredictParams) generateContentConfig() *genai.GenerateContentConfig {
	if p == nil {
		return nil
	}
	c := &genai.GenerateContentConfig{CandidateCount: int32(p.CandidateCount)} // #nosec G115
	c.Temperature = float32Ptr(p.Temperature)
	c.TopP = float32Ptr(p.TopP)
	c.TopK = float32Ptr(p.TopK)
	c.PresencePenalty = float32Ptr(p.PresencePenalty)
	c.FrequencyPenalty = float32Ptr(p.FrequencyPenalty)
	if p.MaxOutputTokens != nil {
		c.MaxOutputTokens = int32(*p.MaxOutputTokens) // #nosec G115
	}
	return c
}

func float32Ptr(f *float64) *float32 {
	if f == nil {
		return nil
	}
	return genai.Ptr(float32(*f))
}
