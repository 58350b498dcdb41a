// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"encoding/base64"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/5war00p/openllmetry/instrumentation"
	"github.com/5war00p/openllmetry/semconvai"
)

// buildRequestAttributes builds the request attributes of req. The prompt is
// only included when sendPrompts is set; sampling parameters always are.
func buildRequestAttributes(req *Request, sendPrompts bool, config *instrumentation.TraceConfig) []attribute.KeyValue {
	var attrs []attribute.KeyValue

	if sendPrompts && len(req.Inputs) > 0 {
		if prompt := buildPrompt(req.Inputs, config.Base64DataMaxLength); prompt != "" {
			attrs = append(attrs, attribute.String(semconvai.PromptAttribute(0, semconvai.RoleUser), prompt))
		}
	}

	p := &req.Params
	if p.Model != "" {
		attrs = append(attrs, attribute.String(semconvai.LLMRequestModel, p.Model))
	}
	if p.Temperature != nil {
		attrs = append(attrs, attribute.Float64(semconvai.LLMTemperature, *p.Temperature))
	}
	if p.MaxOutputTokens != nil {
		attrs = append(attrs, attribute.Int64(semconvai.LLMRequestMaxTokens, *p.MaxOutputTokens))
	}
	if p.TopP != nil {
		attrs = append(attrs, attribute.Float64(semconvai.LLMTopP, *p.TopP))
	}
	if p.PresencePenalty != nil {
		attrs = append(attrs, attribute.Float64(semconvai.LLMPresencePenalty, *p.PresencePenalty))
	}
	if p.FrequencyPenalty != nil {
		attrs = append(attrs, attribute.Float64(semconvai.LLMFrequencyPenalty, *p.FrequencyPenalty))
	}
	return attrs
}

// buildPrompt concatenates the inputs in argument order, one line per string
// and one or two "key: value" lines per multimodal part.
func buildPrompt(inputs []Input, base64MaxLength int) string {
	var b strings.Builder
	for _, in := range inputs {
		if !in.isList {
			b.WriteString(in.text)
			b.WriteByte('\n')
			continue
		}
		for _, p := range in.parts {
			switch p.Kind {
			case PartString:
				b.WriteString(p.Text)
				b.WriteByte('\n')
			case PartText:
				writeLine(&b, "text", p.Text)
			case PartMIMEType:
				writeLine(&b, "mime_type", p.MIMEType)
			case PartInlineData:
				writeLine(&b, "data", encodeInlineData(p.Data, base64MaxLength))
				writeLine(&b, "mime_type", p.MIMEType)
			case PartFileData:
				writeLine(&b, "file_uri", p.FileURI)
				writeLine(&b, "mime_type", p.MIMEType)
			}
		}
	}
	return b.String()
}

func writeLine(b *strings.Builder, key, value string) {
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

// encodeInlineData returns data as standard base64, or RedactedValue when the
// encoding would be longer than maxLength. A maxLength of zero or less means
// no limit.
func encodeInlineData(data []byte, maxLength int) string {
	if maxLength > 0 && base64.StdEncoding.EncodedLen(len(data)) > maxLength {
		return instrumentation.RedactedValue
	}
	return base64.StdEncoding.EncodeToString(data)
}
