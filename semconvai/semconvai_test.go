// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package semconvai

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptAttribute(t *testing.T) {
	require.Equal(t, "llm.prompts.0.user", PromptAttribute(0, RoleUser))
	require.Equal(t, "llm.prompts.3.system", PromptAttribute(3, "system"))
}

func TestCompletionContentAttribute(t *testing.T) {
	tests := []struct {
		index    int
		expected string
	}{
		{0, "llm.completions.0.content"},
		{1, "llm.completions.1.content"},
		{12, "llm.completions.12.content"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.expected, CompletionContentAttribute(tt.index))
	}
}
