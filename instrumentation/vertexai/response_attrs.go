// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/5war00p/openllmetry/semconvai"
)

// buildResponseAttributes builds the usage and completion attributes of
// resp. Zero counts and empty completions are omitted, but completion
// indexes always follow the position of the value.
func buildResponseAttributes(resp *Response) []attribute.KeyValue {
	var attrs []attribute.KeyValue

	if u := resp.Usage; u != nil {
		attrs = appendNonZero(attrs, semconvai.LLMUsageTotalTokens, u.Total)
		attrs = appendNonZero(attrs, semconvai.LLMUsageCompletionTokens, u.Completion)
		attrs = appendNonZero(attrs, semconvai.LLMUsagePromptTokens, u.Prompt)
	}

	values := resp.Values
	if resp.Kind == ResponseText || resp.Kind == ResponseString {
		// Only the first value of a single-text response is meaningful.
		values = values[:min(len(values), 1)]
	}
	for i, v := range values {
		if v == "" {
			continue
		}
		attrs = append(attrs, attribute.String(semconvai.CompletionContentAttribute(i), v))
	}
	return attrs
}

func appendNonZero(attrs []attribute.KeyValue, key string, v int64) []attribute.KeyValue {
	if v == 0 {
		return attrs
	}
	return append(attrs, attribute.Int64(key, v))
}
