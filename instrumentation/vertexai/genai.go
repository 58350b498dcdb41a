// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"strings"

	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/languagemodels"
)

// genaiRequest converts the arguments of a genai content generation call.
func genaiRequest(model string, contents []*genai.Content, config *genai.GenerateContentConfig) *Request {
	var parts []Part
	for _, c := range contents {
		if c == nil {
			continue
		}
		parts = appendGenAIParts(parts, c.Parts...)
	}
	req := &Request{Params: genaiParams(model, config)}
	if len(parts) > 0 {
		req.Inputs = []Input{ListInput(parts...)}
	}
	return req
}

// genaiMessageRequest converts the arguments of a chat message.
func genaiMessageRequest(model string, config *genai.GenerateContentConfig, message []genai.Part) *Request {
	ptrs := make([]*genai.Part, len(message))
	for i := range message {
		ptrs[i] = &message[i]
	}
	req := &Request{Params: genaiParams(model, config)}
	if parts := appendGenAIParts(nil, ptrs...); len(parts) > 0 {
		req.Inputs = []Input{ListInput(parts...)}
	}
	return req
}

// appendGenAIParts decides the Part variant of each genai part. Parts with
// nothing to render, such as function calls, are skipped.
func appendGenAIParts(dst []Part, parts ...*genai.Part) []Part {
	for _, p := range parts {
		switch {
		case p == nil:
		case p.Text != "":
			dst = append(dst, StringPart(p.Text))
		case p.InlineData != nil:
			dst = append(dst, InlineDataPart(p.InlineData.Data, p.InlineData.MIMEType))
		case p.FileData != nil:
			dst = append(dst, FileDataPart(p.FileData.FileURI, p.FileData.MIMEType))
		}
	}
	return dst
}

// genaiParams converts the sampling parameters. A zero MaxOutputTokens is
// the SDK's representation of an absent value.
func genaiParams(model string, config *genai.GenerateContentConfig) Params {
	p := Params{Model: model}
	if config == nil {
		return p
	}
	p.Temperature = float64Ptr(config.Temperature)
	p.TopP = float64Ptr(config.TopP)
	p.PresencePenalty = float64Ptr(config.PresencePenalty)
	p.FrequencyPenalty = float64Ptr(config.FrequencyPenalty)
	if config.MaxOutputTokens != 0 {
		v := int64(config.MaxOutputTokens)
		p.MaxOutputTokens = &v
	}
	return p
}

func float64Ptr(f *float32) *float64 {
	if f == nil {
		return nil
	}
	v := float64(*f)
	return &v
}

// genaiResponse converts a genai response: one text per candidate.
func genaiResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil {
		return nil, nil
	}
	usage := genaiUsage(resp.UsageMetadata)
	if len(resp.Candidates) > 1 {
		texts := make([]string, len(resp.Candidates))
		for i, c := range resp.Candidates {
			texts[i] = candidateText(c)
		}
		return TextListResponse(texts, usage), nil
	}
	text := ""
	if len(resp.Candidates) == 1 {
		text = candidateText(resp.Candidates[0])
	}
	return TextResponse(text, usage), nil
}

// genaiChunk returns the text of the first candidate of a streamed chunk.
func genaiChunk(resp *genai.GenerateContentResponse) (string, *Usage) {
	if resp == nil {
		return "", nil
	}
	text := ""
	if len(resp.Candidates) > 0 {
		text = candidateText(resp.Candidates[0])
	}
	return text, genaiUsage(resp.UsageMetadata)
}

func candidateText(c *genai.Candidate) string {
	if c == nil || c.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Content.Parts {
		if p != nil && !p.Thought {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

func genaiUsage(u *genai.GenerateContentResponseUsageMetadata) *Usage {
	if u == nil {
		return nil
	}
	return &Usage{
		Total:      int64(u.TotalTokenCount),
		Completion: int64(u.CandidatesTokenCount),
		Prompt:     int64(u.PromptTokenCount),
	}
}

// predictRequest converts the arguments of a text prediction.
func predictRequest(model, prompt string, params *languagemodels.PredictParams) *Request {
	req := &Request{Inputs: []Input{TextInput(prompt)}, Params: Params{Model: model}}
	if params != nil {
		req.Params.Temperature = params.Temperature
		req.Params.MaxOutputTokens = params.MaxOutputTokens
		req.Params.TopP = params.TopP
		req.Params.PresencePenalty = params.PresencePenalty
		req.Params.FrequencyPenalty = params.FrequencyPenalty
	}
	return req
}

// predictResponse converts a prediction: the candidate texts when more
// than one was requested, otherwise the text.
func predictResponse(resp *languagemodels.TextGenerationResponse) (*Response, error) {
	if resp == nil {
		return nil, nil
	}
	usage := predictUsage(resp.Usage)
	if len(resp.Candidates) > 1 {
		return TextListResponse(resp.Candidates, usage), nil
	}
	return TextResponse(resp.Text, usage), nil
}

func predictChunk(resp *languagemodels.TextGenerationResponse) (string, *Usage) {
	if resp == nil {
		return "", nil
	}
	return resp.String(), predictUsage(resp.Usage)
}

func predictUsage(u *languagemodels.Usage) *Usage {
	if u == nil {
		return nil
	}
	return &Usage{Total: u.TotalTokens, Completion: u.CandidatesTokens, Prompt: u.PromptTokens}
}
