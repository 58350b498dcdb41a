// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"context"
	"iter"

	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/languagemodels"
)

// Method keys of the proxies. They match MethodDescriptor.String.
const (
	keyGenerateContent       = genaiPackage + ".Models.GenerateContent"
	keyGenerateContentStream = genaiPackage + ".Models.GenerateContentStream"
	keyPredict               = languageModelsPackage + ".TextGenerationModel.Predict"
	keyPredictAsync          = languageModelsPackage + ".TextGenerationModel.PredictAsync"
	keyPredictStreaming      = languageModelsPackage + ".TextGenerationModel.PredictStreaming"
	keyPredictStreamingAsync = languageModelsPackage + ".TextGenerationModel.PredictStreamingAsync"
	keySendMessage           = genaiPackage + ".Chat.SendMessage"
	keySendMessageStream     = genaiPackage + ".Chat.SendMessageStream"
)

// GenerativeModel is the instrumented method set of genai.Models.
type GenerativeModel interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Models returns a GenerativeModel that calls m, usually a genai.Client's
// Models, through the active bindings.
func Models(m GenerativeModel) GenerativeModel {
	return &modelsProxy{next: m}
}

type modelsProxy struct {
	next GenerativeModel
}

func (p *modelsProxy) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return interceptCall(ctx, lookup(keyGenerateContent, false),
		call{model: model, request: func() (*Request, error) { return genaiRequest(model, contents, config), nil }},
		func(ctx context.Context) (*genai.GenerateContentResponse, error) {
			return p.next.GenerateContent(ctx, model, contents, config)
		},
		genaiResponse,
	)
}

func (p *modelsProxy) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return interceptSeq(ctx, lookup(keyGenerateContentStream, false),
		call{model: model, request: func() (*Request, error) { return genaiRequest(model, contents, config), nil }},
		func(ctx context.Context) iter.Seq2[*genai.GenerateContentResponse, error] {
			return p.next.GenerateContentStream(ctx, model, contents, config)
		},
		genaiChunk,
	)
}

// ChatSession is the instrumented method set of genai.Chat.
type ChatSession interface {
	SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
	SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error]
	History(curated bool) []*genai.Content
}

// Chat returns a ChatSession that calls c through the active bindings. The
// model and config c was created with are recorded on its spans.
func Chat(c ChatSession, model string, config *genai.GenerateContentConfig) ChatSession {
	return &chatProxy{next: c, model: model, config: config}
}

// CreateChat creates a chat with chats.Create and returns it wrapped by Chat.
func CreateChat(ctx context.Context, chats *genai.Chats, model string, config *genai.GenerateContentConfig, history []*genai.Content) (ChatSession, error) {
	c, err := chats.Create(ctx, model, config, history)
	if err != nil {
		return nil, err
	}
	return Chat(c, model, config), nil
}

type chatProxy struct {
	next   ChatSession
	model  string
	config *genai.GenerateContentConfig
}

func (p *chatProxy) SendMessage(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	return interceptCall(ctx, lookup(keySendMessage, false),
		call{model: p.model, request: func() (*Request, error) { return genaiMessageRequest(p.model, p.config, parts), nil }},
		func(ctx context.Context) (*genai.GenerateContentResponse, error) {
			return p.next.SendMessage(ctx, parts...)
		},
		genaiResponse,
	)
}

func (p *chatProxy) SendMessageStream(ctx context.Context, parts ...genai.Part) iter.Seq2[*genai.GenerateContentResponse, error] {
	return interceptSeq(ctx, lookup(keySendMessageStream, false),
		call{model: p.model, request: func() (*Request, error) { return genaiMessageRequest(p.model, p.config, parts), nil }},
		func(ctx context.Context) iter.Seq2[*genai.GenerateContentResponse, error] {
			return p.next.SendMessageStream(ctx, parts...)
		},
		genaiChunk,
	)
}

func (p *chatProxy) History(curated bool) []*genai.Content {
	return p.next.History(curated)
}

// TextGenerationModel returns a languagemodels.TextGenerationModel that calls
// m through the active bindings.
func TextGenerationModel(m languagemodels.TextGenerationModel) languagemodels.TextGenerationModel {
	return &textGenerationModelProxy{next: m}
}

type textGenerationModelProxy struct {
	next languagemodels.TextGenerationModel
}

func (p *textGenerationModelProxy) Model() string { return p.next.Model() }

func (p *textGenerationModelProxy) predictCall(prompt string, params *languagemodels.PredictParams) call {
	model := p.next.Model()
	return call{model: model, request: func() (*Request, error) { return predictRequest(model, prompt, params), nil }}
}

func (p *textGenerationModelProxy) Predict(ctx context.Context, prompt string, params *languagemodels.PredictParams) (*languagemodels.TextGenerationResponse, error) {
	return interceptCall(ctx, lookup(keyPredict, false), p.predictCall(prompt, params),
		func(ctx context.Context) (*languagemodels.TextGenerationResponse, error) {
			return p.next.Predict(ctx, prompt, params)
		},
		predictResponse,
	)
}

func (p *textGenerationModelProxy) PredictAsync(ctx context.Context, prompt string, params *languagemodels.PredictParams) languagemodels.Future[*languagemodels.TextGenerationResponse] {
	return interceptFuture(ctx, lookup(keyPredictAsync, true), p.predictCall(prompt, params),
		func(ctx context.Context) languagemodels.Future[*languagemodels.TextGenerationResponse] {
			return p.next.PredictAsync(ctx, prompt, params)
		},
		predictResponse,
	)
}

func (p *textGenerationModelProxy) PredictStreaming(ctx context.Context, prompt string, params *languagemodels.PredictParams) iter.Seq2[*languagemodels.TextGenerationResponse, error] {
	return interceptSeq(ctx, lookup(keyPredictStreaming, false), p.predictCall(prompt, params),
		func(ctx context.Context) iter.Seq2[*languagemodels.TextGenerationResponse, error] {
			return p.next.PredictStreaming(ctx, prompt, params)
		},
		predictChunk,
	)
}

func (p *textGenerationModelProxy) PredictStreamingAsync(ctx context.Context, prompt string, params *languagemodels.PredictParams) languagemodels.Stream[*languagemodels.TextGenerationResponse] {
	return interceptStream(ctx, lookup(keyPredictStreamingAsync, true), p.predictCall(prompt, params),
		func(ctx context.Context) languagemodels.Stream[*languagemodels.TextGenerationResponse] {
			return p.next.PredictStreamingAsync(ctx, prompt, params)
		},
		predictChunk,
	)
}
