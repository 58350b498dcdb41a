// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/instrumentation/vertexai"
	"github.com/5war00p/openllmetry/languagemodels"
)

// callCommand is a command that calls a model through the instrumented
// proxies.
type callCommand interface {
	flags() *clientFlags
	call(ctx context.Context, client *genai.Client, stdout io.Writer) error
}

var (
	_ callCommand = (*cmdGenerate)(nil)
	_ callCommand = (*cmdStream)(nil)
	_ callCommand = (*cmdPredict)(nil)
	_ callCommand = (*cmdChat)(nil)
)

func (c *cmdGenerate) flags() *clientFlags { return &c.clientFlags }

func (c *cmdGenerate) call(ctx context.Context, client *genai.Client, stdout io.Writer) error {
	resp, err := vertexai.Models(client.Models).GenerateContent(ctx, c.Model, promptContents(c.Prompt), c.generateContentConfig())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, resp.Text())
	return err
}

func (c *cmdStream) flags() *clientFlags { return &c.clientFlags }

func (c *cmdStream) call(ctx context.Context, client *genai.Client, stdout io.Writer) error {
	seq := vertexai.Models(client.Models).GenerateContentStream(ctx, c.Model, promptContents(c.Prompt), c.generateContentConfig())
	return printStream(stdout, seq, (*genai.GenerateContentResponse).Text)
}

func (c *cmdPredict) flags() *clientFlags { return &c.clientFlags }

func (c *cmdPredict) call(ctx context.Context, client *genai.Client, stdout io.Writer) error {
	model := vertexai.TextGenerationModel(languagemodels.NewTextGenerationModel(client.Models, c.Model))
	params := c.predictParams()

	switch {
	case c.Stream && c.Async:
		s := model.PredictStreamingAsync(ctx, c.Prompt, params)
		defer func() { _ = s.Close() }()
		for {
			resp, err := s.Recv(ctx)
			if errors.Is(err, io.EOF) {
				_, err = fmt.Fprintln(stdout)
				return err
			}
			if err != nil {
				return err
			}
			if _, err = fmt.Fprint(stdout, resp); err != nil {
				return err
			}
		}
	case c.Stream:
		return printStream(stdout, model.PredictStreaming(ctx, c.Prompt, params), (*languagemodels.TextGenerationResponse).String)
	case c.Async:
		resp, err := model.PredictAsync(ctx, c.Prompt, params).Await(ctx)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, resp)
		return err
	default:
		resp, err := model.Predict(ctx, c.Prompt, params)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, resp)
		return err
	}
}

func (c *cmdPredict) predictParams() *languagemodels.PredictParams {
	p := &languagemodels.PredictParams{}
	if c.Temperature != nil {
		v := float64(*c.Temperature)
		p.Temperature = &v
	}
	if c.TopP != nil {
		v := float64(*c.TopP)
		p.TopP = &v
	}
	if c.MaxOutputTokens != 0 {
		v := int64(c.MaxOutputTokens)
		p.MaxOutputTokens = &v
	}
	return p
}

func (c *cmdChat) flags() *clientFlags { return &c.clientFlags }

func (c *cmdChat) call(ctx context.Context, client *genai.Client, stdout io.Writer) error {
	chat, err := vertexai.CreateChat(ctx, client.Chats, c.Model, c.generateContentConfig(), nil)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	for _, msg := range c.Messages {
		if c.Stream {
			if err = printStream(stdout, chat.SendMessageStream(ctx, genai.Part{Text: msg}), (*genai.GenerateContentResponse).Text); err != nil {
				return err
			}
			continue
		}
		resp, err := chat.SendMessage(ctx, genai.Part{Text: msg})
		if err != nil {
			return err
		}
		if _, err = fmt.Fprintln(stdout, resp.Text()); err != nil {
			return err
		}
	}
	return nil
}

// promptContents returns one user content with a text part per argument.
func promptContents(prompt []string) []*genai.Content {
	parts := make([]*genai.Part, len(prompt))
	for i, p := range prompt {
		parts[i] = genai.NewPartFromText(p)
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
}

// printStream writes the text of each chunk as it arrives, then a newline.
func printStream[C any](stdout io.Writer, seq iter.Seq2[C, error], text func(C) string) error {
	for chunk, err := range seq {
		if err != nil {
			return err
		}
		if _, err = fmt.Fprint(stdout, text(chunk)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(stdout)
	return err
}
