// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package metrics records the client-side GenAI metrics of instrumented
// model calls and builds the MeterProvider they are exported through.
package metrics

import "go.opentelemetry.io/otel/metric"

const (
	// Metric names, attributes and values according to the Semantic Conventions for Generative AI Metrics.
	// See: https://opentelemetry.io/docs/specs/semconv/gen-ai/gen-ai-metrics/

	genaiMetricClientTokenUsage        = "gen_ai.client.token.usage" // #nosec G101: Potential hardcoded credentials
	genaiMetricClientOperationDuration = "gen_ai.client.operation.duration"
	genaiMetricClientTimeToFirstChunk  = "gen_ai.client.operation.time_to_first_chunk"
	genaiAttributeOperationName        = "gen_ai.operation.name"
	genaiAttributeSystemName           = "gen_ai.system.name"
	genaiAttributeRequestModel         = "gen_ai.request.model"
	genaiAttributeTokenType            = "gen_ai.token.type" // #nosec G101: Potential hardcoded credentials
	genaiAttributeErrorType            = "error.type"
	genaiTokenTypeInput                = "input"
	genaiTokenTypeOutput               = "output"
	genaiTokenTypeTotal                = "total"
	genaiErrorTypeFallback             = "_OTHER"
	genaiModelUnknown                  = "unknown"
)

// Operation names.
const (
	OperationGenerateContent = "generate_content"
	OperationTextCompletion  = "text_completion"
	OperationChat            = "chat"
)

// SystemVertexAI is the gen_ai.system.name of Gemini and Vertex AI calls.
const SystemVertexAI = "gcp.vertex_ai"

// genAI holds the client metrics according to the Semantic Conventions for Generative AI Metrics.
type genAI struct {
	// Number of tokens processed.
	// See: https://opentelemetry.io/docs/specs/semconv/gen-ai/gen-ai-metrics/#metric-gen_aiclienttokenusage
	tokenUsage metric.Float64Histogram
	// operationDuration is measured from the call until its response is complete: the return of a
	// blocking call, the completed await of a future, or the exhaustion of a stream.
	// See: https://opentelemetry.io/docs/specs/semconv/gen-ai/gen-ai-metrics/#metric-gen_aiclientoperationduration
	operationDuration metric.Float64Histogram
	// timeToFirstChunk is measured from the call until the first chunk of a stream is received.
	timeToFirstChunk metric.Float64Histogram
}

func newGenAI(meter metric.Meter) *genAI {
	return &genAI{
		tokenUsage: mustRegisterHistogram(meter,
			genaiMetricClientTokenUsage,
			metric.WithDescription("Number of input and output tokens used."),
			metric.WithUnit("{token}"),
			metric.WithExplicitBucketBoundaries(1, 4, 16, 64, 256, 1024, 4096, 16384, 65536, 262144, 1048576, 4194304, 16777216, 67108864),
		),
		operationDuration: mustRegisterHistogram(meter,
			genaiMetricClientOperationDuration,
			metric.WithDescription("GenAI operation duration."),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.01, 0.02, 0.04, 0.08, 0.16, 0.32, 0.64, 1.28, 2.56, 5.12, 10.24, 20.48, 40.96, 81.92),
		),
		timeToFirstChunk: mustRegisterHistogram(meter,
			genaiMetricClientTimeToFirstChunk,
			metric.WithDescription("Time to receive the first chunk of a streaming response."),
			metric.WithUnit("s"),
			metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.02, 0.04, 0.06, 0.08, 0.1, 0.25, 0.5, 0.75, 1.0, 2.5, 5.0, 7.5, 10.0),
		),
	}
}

// mustRegisterHistogram registers a histogram with the meter and panics if it fails.
func mustRegisterHistogram(meter metric.Meter, name string, options ...metric.Float64HistogramOption) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, options...)
	if err != nil {
		panic(err)
	}
	return h
}
