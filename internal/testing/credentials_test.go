// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package internaltesting

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequireNewCredentialsContext(t *testing.T) {
	t.Run("unset", func(t *testing.T) {
		for _, k := range []string{"TEST_GEMINI_API_KEY", "TEST_VERTEXAI_PROJECT", "TEST_VERTEXAI_LOCATION", "TEST_VERTEXAI_CREDENTIALS_FILE", "TEST_VERTEXAI_TRACE_MODEL"} {
			t.Setenv(k, "")
		}
		require.Equal(t, CredentialsContext{
			GeminiAPIKey:     "dummy-gemini-api-key",
			VertexAILocation: "us-central1",
			Model:            "gemini-2.0-flash",
		}, RequireNewCredentialsContext())
	})
	t.Run("set", func(t *testing.T) {
		t.Setenv("TEST_GEMINI_API_KEY", "key")
		t.Setenv("TEST_VERTEXAI_PROJECT", "project")
		t.Setenv("TEST_VERTEXAI_LOCATION", "europe-west4")
		t.Setenv("TEST_VERTEXAI_CREDENTIALS_FILE", "/tmp/key.json")
		t.Setenv("TEST_VERTEXAI_TRACE_MODEL", "gemini-2.5-flash")
		require.Equal(t, CredentialsContext{
			GeminiValid:             true,
			VertexAIValid:           true,
			GeminiAPIKey:            "key",
			VertexAIProject:         "project",
			VertexAILocation:        "europe-west4",
			VertexAICredentialsFile: "/tmp/key.json",
			Model:                   "gemini-2.5-flash",
		}, RequireNewCredentialsContext())
	})
}
