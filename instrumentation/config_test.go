// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package instrumentation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTraceConfig(t *testing.T) {
	require.Equal(t, &TraceConfig{TraceContent: true, Base64DataMaxLength: 32000}, NewTraceConfig())
}

func TestNewTraceConfigFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected *TraceConfig
	}{
		{
			name:     "defaults",
			expected: NewTraceConfig(),
		},
		{
			name:     "content true upper case",
			env:      map[string]string{EnvTraceContent: "TRUE"},
			expected: &TraceConfig{TraceContent: true, Base64DataMaxLength: 32000},
		},
		{
			name:     "content false",
			env:      map[string]string{EnvTraceContent: "FALSE"},
			expected: &TraceConfig{TraceContent: false, Base64DataMaxLength: 32000},
		},
		{
			name:     "content not a boolean",
			env:      map[string]string{EnvTraceContent: "1"},
			expected: &TraceConfig{TraceContent: false, Base64DataMaxLength: 32000},
		},
		{
			name:     "base64 limit",
			env:      map[string]string{EnvBase64DataMaxLength: "10"},
			expected: &TraceConfig{TraceContent: true, Base64DataMaxLength: 10},
		},
		{
			name:     "invalid base64 limit falls back",
			env:      map[string]string{EnvBase64DataMaxLength: "ten"},
			expected: NewTraceConfig(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvTraceContent, "")
			t.Setenv(EnvBase64DataMaxLength, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			require.Equal(t, tt.expected, NewTraceConfigFromEnv())
		})
	}
}

func TestTraceConfig_ShouldSendPrompts(t *testing.T) {
	on := &TraceConfig{TraceContent: true}
	off := &TraceConfig{TraceContent: false}

	require.True(t, on.ShouldSendPrompts(t.Context()))
	require.False(t, off.ShouldSendPrompts(t.Context()))
	require.True(t, off.ShouldSendPrompts(WithContentTracingOverride(t.Context())))
}

func TestContextFlags(t *testing.T) {
	ctx := context.Background()
	require.False(t, IsSuppressed(ctx))
	require.False(t, ContentTracingOverride(ctx))

	require.True(t, IsSuppressed(WithSuppressedInstrumentation(ctx)))
	require.True(t, ContentTracingOverride(WithContentTracingOverride(ctx)))
	// Flags are independent.
	require.False(t, ContentTracingOverride(WithSuppressedInstrumentation(ctx)))
}
