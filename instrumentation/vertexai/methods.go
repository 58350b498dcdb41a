// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"strings"

	"github.com/5war00p/openllmetry/internal/metrics"
)

const (
	genaiPackage          = "google.golang.org/genai"
	languageModelsPackage = "github.com/5war00p/openllmetry/languagemodels"

	// asyncMarker is the method name suffix of calls whose result is awaited
	// or received asynchronously.
	asyncMarker = "Async"
)

// MethodDescriptor identifies one interceptable method and the name of the
// spans it produces.
type MethodDescriptor struct {
	Package  string
	Object   string
	Method   string
	SpanName string
}

func (d MethodDescriptor) String() string {
	return d.Package + "." + d.Object + "." + d.Method
}

// IsAsync reports whether the method carries the async naming marker.
func (d MethodDescriptor) IsAsync() bool {
	return strings.HasSuffix(d.Method, asyncMarker)
}

// WrappedMethods are the methods instrumented by default.
var WrappedMethods = []MethodDescriptor{
	{Package: genaiPackage, Object: "Models", Method: "GenerateContent", SpanName: "vertexai.generate_content"},
	{Package: genaiPackage, Object: "Models", Method: "GenerateContentStream", SpanName: "vertexai.generate_content"},
	{Package: languageModelsPackage, Object: "TextGenerationModel", Method: "Predict", SpanName: "vertexai.predict"},
	{Package: languageModelsPackage, Object: "TextGenerationModel", Method: "PredictAsync", SpanName: "vertexai.predict"},
	{Package: languageModelsPackage, Object: "TextGenerationModel", Method: "PredictStreaming", SpanName: "vertexai.predict"},
	{Package: languageModelsPackage, Object: "TextGenerationModel", Method: "PredictStreamingAsync", SpanName: "vertexai.predict"},
	{Package: genaiPackage, Object: "Chat", Method: "SendMessage", SpanName: "vertexai.send_message"},
	{Package: genaiPackage, Object: "Chat", Method: "SendMessageStream", SpanName: "vertexai.send_message"},
}

// target is a method the proxies in this package can dispatch through an
// interceptor.
type target struct {
	// operation is the gen_ai.operation.name of the call metrics.
	operation string
}

var targets = map[string]target{
	keyGenerateContent:       {operation: metrics.OperationGenerateContent},
	keyGenerateContentStream: {operation: metrics.OperationGenerateContent},
	keyPredict:               {operation: metrics.OperationTextCompletion},
	keyPredictAsync:          {operation: metrics.OperationTextCompletion},
	keyPredictStreaming:      {operation: metrics.OperationTextCompletion},
	keyPredictStreamingAsync: {operation: metrics.OperationTextCompletion},
	keySendMessage:           {operation: metrics.OperationChat},
	keySendMessageStream:     {operation: metrics.OperationChat},
}
