// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package internaltesting holds helpers shared by tests that call real
// Gemini or Vertex AI endpoints.
package internaltesting

import (
	"cmp"
	"os"
	"testing"
)

// RequiredCredential is a bit flag for the required credentials.
type RequiredCredential byte

const (
	// RequiredCredentialGemini is the bit flag for the Gemini API key.
	RequiredCredentialGemini RequiredCredential = 1 << iota
	// RequiredCredentialVertexAI is the bit flag for a Google Cloud project
	// with application default credentials or a service account key file.
	RequiredCredentialVertexAI
)

// CredentialsContext holds the credentials used in the live tests.
type CredentialsContext struct {
	// GeminiValid and VertexAIValid are true if the credentials are set and
	// ready to use the real services.
	GeminiValid, VertexAIValid bool
	// GeminiAPIKey is the API key for Gemini API. This defaults to
	// "dummy-gemini-api-key" if not set.
	GeminiAPIKey string
	// VertexAIProject is the Google Cloud project of the Vertex AI backend.
	VertexAIProject string
	// VertexAILocation defaults to us-central1.
	VertexAILocation string
	// VertexAICredentialsFile is an optional service account key file.
	// Application default credentials are used when empty.
	VertexAICredentialsFile string
	// Model defaults to gemini-2.0-flash.
	Model string
}

// MaybeSkip skips the test if the required credentials are not set.
func (c CredentialsContext) MaybeSkip(t *testing.T, required RequiredCredential) {
	if required&RequiredCredentialGemini != 0 && !c.GeminiValid {
		t.Skip("skipping test as Gemini API key is not set in TEST_GEMINI_API_KEY")
	}
	if required&RequiredCredentialVertexAI != 0 && !c.VertexAIValid {
		t.Skip("skipping test as Vertex AI project is not set in TEST_VERTEXAI_PROJECT")
	}
}

// RequireNewCredentialsContext creates a new credential context for the tests from the environment variables.
func RequireNewCredentialsContext() (ctx CredentialsContext) {
	geminiAPIKeyEnv := os.Getenv("TEST_GEMINI_API_KEY")
	ctx.GeminiValid = geminiAPIKeyEnv != ""
	ctx.GeminiAPIKey = cmp.Or(geminiAPIKeyEnv, "dummy-gemini-api-key")

	ctx.VertexAIProject = os.Getenv("TEST_VERTEXAI_PROJECT")
	ctx.VertexAIValid = ctx.VertexAIProject != ""
	ctx.VertexAILocation = cmp.Or(os.Getenv("TEST_VERTEXAI_LOCATION"), "us-central1")
	ctx.VertexAICredentialsFile = os.Getenv("TEST_VERTEXAI_CREDENTIALS_FILE")

	ctx.Model = cmp.Or(os.Getenv("TEST_VERTEXAI_TRACE_MODEL"), "gemini-2.0-flash")
	return
}
