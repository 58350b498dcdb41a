// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package instrumentation

import (
	"context"
	"os"
	"strconv"
	"strings"
)

// Environment variable names for trace configuration.
const (
	// EnvTraceContent is the environment variable for TraceConfig.TraceContent.
	// Only a case-insensitive "true" enables content tracing; any other set
	// value disables it.
	EnvTraceContent = "TRACELOOP_TRACE_CONTENT"
	// EnvBase64DataMaxLength is the environment variable for
	// TraceConfig.Base64DataMaxLength.
	EnvBase64DataMaxLength = "TRACELOOP_BASE64_DATA_MAX_LENGTH"
)

const (
	defaultTraceContent        = true
	defaultBase64DataMaxLength = 32000
)

// RedactedValue is written in place of content that is too large to record.
const RedactedValue = "__REDACTED__"

// TraceConfig controls how much content instrumentations record.
//
// Use NewTraceConfig to create this from defaults or NewTraceConfigFromEnv
// to prioritize environment variables.
type TraceConfig struct {
	// TraceContent controls whether prompt text is recorded. Numeric request
	// parameters and token counts are recorded either way.
	TraceContent bool
	// Base64DataMaxLength limits the characters of a base64 encoding of
	// inline data recorded in a prompt. Longer payloads are recorded as
	// RedactedValue.
	Base64DataMaxLength int
}

// NewTraceConfig creates a new TraceConfig with default values.
func NewTraceConfig() *TraceConfig {
	return &TraceConfig{
		TraceContent:        defaultTraceContent,
		Base64DataMaxLength: defaultBase64DataMaxLength,
	}
}

// NewTraceConfigFromEnv creates a new TraceConfig with values from environment
// variables or their corresponding defaults.
func NewTraceConfigFromEnv() *TraceConfig {
	return &TraceConfig{
		TraceContent:        getEnv(EnvTraceContent, defaultTraceContent, parseTrue),
		Base64DataMaxLength: getEnv(EnvBase64DataMaxLength, defaultBase64DataMaxLength, strconv.Atoi),
	}
}

// ShouldSendPrompts reports whether prompt content may be recorded for a
// call made with ctx: either the config allows it or ctx carries the
// content-tracing override.
func (c *TraceConfig) ShouldSendPrompts(ctx context.Context) bool {
	return c.TraceContent || ContentTracingOverride(ctx)
}

// parseTrue never fails: anything but "true" in any case is false.
func parseTrue(v string) (bool, error) {
	return strings.EqualFold(v, "true"), nil
}

// getEnv reads a value from an environment variable and parses it using the provided parser.
// Returns defaultValue if the variable is not set or cannot be parsed.
func getEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := parse(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
