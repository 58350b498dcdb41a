// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"k8s.io/utils/ptr"

	"github.com/5war00p/openllmetry/instrumentation"
)

func TestBuildPrompt(t *testing.T) {
	tests := []struct {
		name     string
		inputs   []Input
		expected string
	}{
		{name: "no inputs", expected: ""},
		{name: "string", inputs: []Input{TextInput("Hello")}, expected: "Hello\n"},
		{name: "empty string", inputs: []Input{TextInput("")}, expected: "\n"},
		{
			name:     "strings in argument order",
			inputs:   []Input{TextInput("a"), ListInput(StringPart("b"), StringPart("c")), TextInput("d")},
			expected: "a\nb\nc\nd\n",
		},
		{name: "text part", inputs: []Input{ListInput(TextPart("hi"))}, expected: "text: hi\n"},
		{name: "mime type part", inputs: []Input{ListInput(MIMETypePart("image/png"))}, expected: "mime_type: image/png\n"},
		{
			name:     "inline data part",
			inputs:   []Input{ListInput(InlineDataPart([]byte("abc"), "image/png"))},
			expected: "data: YWJj\nmime_type: image/png\n",
		},
		{
			name:     "file data part",
			inputs:   []Input{ListInput(FileDataPart("gs://bucket/scones.jpg", "image/jpeg"))},
			expected: "file_uri: gs://bucket/scones.jpg\nmime_type: image/jpeg\n",
		},
		{
			name: "multimodal",
			inputs: []Input{ListInput(
				FileDataPart("gs://bucket/scones.jpg", "image/jpeg"),
				StringPart("what is shown in this image?"),
			)},
			expected: "file_uri: gs://bucket/scones.jpg\nmime_type: image/jpeg\nwhat is shown in this image?\n",
		},
		{name: "empty list", inputs: []Input{ListInput()}, expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, buildPrompt(tt.inputs, 32000))
		})
	}
}

func TestEncodeInlineData(t *testing.T) {
	require.Equal(t, "YWJj", encodeInlineData([]byte("abc"), 4))
	require.Equal(t, instrumentation.RedactedValue, encodeInlineData([]byte("abcd"), 4))
	require.Equal(t, strings.Repeat("A", 44), encodeInlineData(make([]byte, 33), 0))
}

func TestBuildRequestAttributes(t *testing.T) {
	config := instrumentation.NewTraceConfig()

	tests := []struct {
		name        string
		req         *Request
		sendPrompts bool
		expected    []attribute.KeyValue
	}{
		{
			name: "prompt and params",
			req: &Request{
				Inputs: []Input{TextInput("Hello")},
				Params: Params{
					Model:            "gemini-2.0-flash",
					Temperature:      ptr.To(0.5),
					MaxOutputTokens:  ptr.To[int64](256),
					TopP:             ptr.To(0.8),
					PresencePenalty:  ptr.To(0.1),
					FrequencyPenalty: ptr.To(0.2),
				},
			},
			sendPrompts: true,
			expected: []attribute.KeyValue{
				attribute.String("llm.prompts.0.user", "Hello\n"),
				attribute.String("llm.request.model", "gemini-2.0-flash"),
				attribute.Float64("llm.temperature", 0.5),
				attribute.Int64("llm.request.max_tokens", 256),
				attribute.Float64("llm.top_p", 0.8),
				attribute.Float64("llm.presence_penalty", 0.1),
				attribute.Float64("llm.frequency_penalty", 0.2),
			},
		},
		{
			name: "keyword parameters only",
			req: &Request{Params: Params{
				Temperature: ptr.To(0.8),
				TopP:        ptr.To(0.95),
			}},
			sendPrompts: true,
			expected: []attribute.KeyValue{
				attribute.Float64("llm.temperature", 0.8),
				attribute.Float64("llm.top_p", 0.95),
			},
		},
		{
			name: "prompts disabled",
			req: &Request{
				Inputs: []Input{TextInput("Hello")},
				Params: Params{Temperature: ptr.To(0.0)},
			},
			expected: []attribute.KeyValue{
				attribute.Float64("llm.temperature", 0),
			},
		},
		{
			name:        "empty prompt is omitted",
			req:         &Request{Inputs: []Input{ListInput()}},
			sendPrompts: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, buildRequestAttributes(tt.req, tt.sendPrompts, config))
		})
	}
}
