// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package semconvai holds the span attribute names written by the LLM
// instrumentations in this module.
//
// The names follow the Traceloop "llm.*" conventions rather than the
// OpenTelemetry gen_ai.* registry, so that spans line up with the ones emitted
// by the other OpenLLMetry instrumentations.
package semconvai

import "fmt"

// Request attributes.
const (
	// LLMVendor identifies the vendor of the model (e.g. "VertexAI").
	LLMVendor = "llm.vendor"

	// LLMRequestType is the kind of request, see LLMRequestTypeValues.
	LLMRequestType = "llm.request.type"

	// LLMRequestModel is the model name the request was sent to.
	LLMRequestModel = "llm.request.model"

	// LLMRequestMaxTokens is the maximum number of output tokens requested.
	LLMRequestMaxTokens = "llm.request.max_tokens" // #nosec G101

	// LLMTemperature is the sampling temperature.
	LLMTemperature = "llm.temperature"

	// LLMTopP is the nucleus sampling probability mass.
	LLMTopP = "llm.top_p"

	// LLMPresencePenalty is the presence penalty.
	LLMPresencePenalty = "llm.presence_penalty"

	// LLMFrequencyPenalty is the frequency penalty.
	LLMFrequencyPenalty = "llm.frequency_penalty"

	// LLMPrompts prefix for prompt attributes.
	// Usage: llm.prompts.{index}.{role}
	LLMPrompts = "llm.prompts"
)

// Response attributes.
const (
	// LLMCompletions prefix for completion attributes.
	// Usage: llm.completions.{index}.content
	LLMCompletions = "llm.completions"

	// LLMUsageTotalTokens is the total number of tokens used.
	LLMUsageTotalTokens = "llm.usage.total_tokens" // #nosec G101

	// LLMUsageCompletionTokens is the number of tokens in the completion.
	LLMUsageCompletionTokens = "llm.usage.completion_tokens" // #nosec G101

	// LLMUsagePromptTokens is the number of tokens in the prompt.
	LLMUsagePromptTokens = "llm.usage.prompt_tokens" // #nosec G101
)

// LLMRequestTypeValues enumerates the values of LLMRequestType.
type LLMRequestTypeValues string

// LLMRequestTypeCompletion is the request type of every VertexAI call,
// chat turns included.
const LLMRequestTypeCompletion LLMRequestTypeValues = "completion"

// RoleUser is the prompt role used for user supplied prompt text.
const RoleUser = "user"

// PromptAttribute creates an attribute key for a prompt.
// Format: llm.prompts.{index}.{role}
//
// Example: llm.prompts.0.user
func PromptAttribute(index int, role string) string {
	return fmt.Sprintf("%s.%d.%s", LLMPrompts, index, role)
}

// CompletionContentAttribute creates an attribute key for completion content.
// Format: llm.completions.{index}.content
func CompletionContentAttribute(index int) string {
	return fmt.Sprintf("%s.%d.content", LLMCompletions, index)
}
