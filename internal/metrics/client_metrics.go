// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package metrics

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Client records the GenAI client metrics of model calls.
type Client struct {
	metrics *genAI
	system  string
}

// NewClient creates a new Client reporting calls to system, for example
// SystemVertexAI.
func NewClient(meter metric.Meter, system string) *Client {
	return &Client{metrics: newGenAI(meter), system: system}
}

// StartCall starts timing a call of the given operation against model.
func (c *Client) StartCall(operation, model string) *Call {
	if model == "" {
		model = genaiModelUnknown
	}
	return &Call{
		metrics:   c.metrics,
		start:     time.Now(),
		operation: operation,
		system:    c.system,
		model:     model,
	}
}

// Call holds the metrics state of a single model call.
type Call struct {
	metrics   *genAI
	start     time.Time
	operation string
	system    string
	model     string

	firstChunk sync.Once
}

func (c *Call) buildAttributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Key(genaiAttributeOperationName).String(c.operation),
		attribute.Key(genaiAttributeSystemName).String(c.system),
		attribute.Key(genaiAttributeRequestModel).String(c.model),
	}
}

// RecordTokenUsage records token usage metrics.
func (c *Call) RecordTokenUsage(ctx context.Context, inputTokens, outputTokens, totalTokens int64) {
	attrs := c.buildAttributes()

	c.metrics.tokenUsage.Record(ctx, float64(inputTokens),
		metric.WithAttributes(attrs...),
		metric.WithAttributes(attribute.Key(genaiAttributeTokenType).String(genaiTokenTypeInput)),
	)
	c.metrics.tokenUsage.Record(ctx, float64(outputTokens),
		metric.WithAttributes(attrs...),
		metric.WithAttributes(attribute.Key(genaiAttributeTokenType).String(genaiTokenTypeOutput)),
	)
	c.metrics.tokenUsage.Record(ctx, float64(totalTokens),
		metric.WithAttributes(attrs...),
		metric.WithAttributes(attribute.Key(genaiAttributeTokenType).String(genaiTokenTypeTotal)),
	)
}

// RecordFirstChunk records the time to the first streamed chunk. Only the
// first invocation records.
func (c *Call) RecordFirstChunk(ctx context.Context) {
	c.firstChunk.Do(func() {
		c.metrics.timeToFirstChunk.Record(ctx, time.Since(c.start).Seconds(), metric.WithAttributes(c.buildAttributes()...))
	})
}

// RecordCompletion records the duration of the call. A non-empty errorType
// marks a failed call; pass "" on success.
func (c *Call) RecordCompletion(ctx context.Context, errorType string) {
	attrs := c.buildAttributes()
	if errorType == "" {
		// According to the semantic conventions, the error attribute should not be added for successful operations
		c.metrics.operationDuration.Record(ctx, time.Since(c.start).Seconds(), metric.WithAttributes(attrs...))
		return
	}
	c.metrics.operationDuration.Record(ctx, time.Since(c.start).Seconds(),
		metric.WithAttributes(attrs...),
		metric.WithAttributes(attribute.Key(genaiAttributeErrorType).String(errorType)),
	)
}

// ErrorTypeFallback is the error.type used when no more specific one is known.
const ErrorTypeFallback = genaiErrorTypeFallback
