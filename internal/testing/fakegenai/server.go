// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package fakegenai provides a fake Gemini API server for tests.
//
// It serves models/{model}:generateContent and
// models/{model}:streamGenerateContent?alt=sse with canned chunks, which lets
// a real genai.Client run against it.
package fakegenai

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"google.golang.org/genai"
)

// PromptTokens is the prompt token count of every response.
const PromptTokens = 3

// Request is a request received by the Server.
type Request struct {
	// Method is generateContent or streamGenerateContent.
	Method string
	Model  string
	Header http.Header
	// Texts are the text parts of the request contents, in order.
	Texts []string
}

// Server is a fake Gemini API.
type Server struct {
	*httptest.Server

	chunks []string

	mu       sync.Mutex
	failure  *genai.APIError
	requests []Request
}

// NewServer starts a Server answering with chunks: one streamed event per
// chunk, or their concatenation when not streaming. Each chunk counts as one
// candidate token.
func NewServer(chunks ...string) *Server {
	s := &Server{chunks: chunks}
	s.Server = httptest.NewServer(s)
	return s
}

// ClientConfig returns a genai.ClientConfig targeting s.
func (s *Server) ClientConfig() *genai.ClientConfig {
	return &genai.ClientConfig{
		APIKey:      "fake-api-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: s.URL + "/"},
	}
}

// FailWith makes subsequent requests fail with err.
func (s *Server) FailWith(err genai.APIError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = &err
}

// Requests returns the requests received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Paths look like /v1beta/models/gemini-2.0-flash:generateContent.
	_, resource, _ := strings.Cut(r.URL.Path, "/models/")
	model, method, ok := strings.Cut(resource, ":")
	if r.Method != http.MethodPost || !ok || (method != "generateContent" && method != "streamGenerateContent") {
		writeError(w, genai.APIError{Code: http.StatusNotFound, Message: "unknown path " + r.URL.Path, Status: "NOT_FOUND"})
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, genai.APIError{Code: http.StatusBadRequest, Message: err.Error(), Status: "INVALID_ARGUMENT"})
		return
	}

	req := Request{Method: method, Model: model, Header: r.Header.Clone()}
	for _, text := range gjson.GetBytes(body, "contents.#.parts.#.text").Array() {
		for _, t := range text.Array() {
			req.Texts = append(req.Texts, t.String())
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	failure := s.failure
	s.mu.Unlock()

	if failure != nil {
		writeError(w, *failure)
		return
	}

	if method == "generateContent" {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(response(strings.Join(s.chunks, ""), len(s.chunks)))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	for i, chunk := range s.chunks {
		// Usage is reported with the last chunk.
		tokens := 0
		if i == len(s.chunks)-1 {
			tokens = len(s.chunks)
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", response(chunk, tokens)); err != nil {
			return
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}

// response returns a GenerateContentResponse with one candidate. The usage
// and finish reason are omitted when candidateTokens is zero.
func response(text string, candidateTokens int) []byte {
	b, _ := sjson.SetBytes(nil, "candidates.0.content.role", "model")
	b, _ = sjson.SetBytes(b, "candidates.0.content.parts.0.text", text)
	b, _ = sjson.SetBytes(b, "candidates.0.index", 0)
	b, _ = sjson.SetBytes(b, "responseId", uuid.NewString())
	if candidateTokens > 0 {
		b, _ = sjson.SetBytes(b, "candidates.0.finishReason", "STOP")
		b, _ = sjson.SetBytes(b, "usageMetadata.promptTokenCount", PromptTokens)
		b, _ = sjson.SetBytes(b, "usageMetadata.candidatesTokenCount", candidateTokens)
		b, _ = sjson.SetBytes(b, "usageMetadata.totalTokenCount", PromptTokens+candidateTokens)
	}
	return b
}

func writeError(w http.ResponseWriter, err genai.APIError) {
	b, _ := sjson.SetBytes(nil, "error.code", err.Code)
	b, _ = sjson.SetBytes(b, "error.message", err.Message)
	b, _ = sjson.SetBytes(b, "error.status", err.Status)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	_, _ = w.Write(b)
}
