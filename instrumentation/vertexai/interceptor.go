// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"context"
	"errors"
	"iter"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/5war00p/openllmetry/instrumentation"
	"github.com/5war00p/openllmetry/internal/metrics"
	"github.com/5war00p/openllmetry/languagemodels"
	"github.com/5war00p/openllmetry/semconvai"
)

// vendor is the llm.vendor of every span.
const vendor = "VertexAI"

// interceptor wraps the calls of one MethodDescriptor in spans.
type interceptor struct {
	descriptor MethodDescriptor
	// async is set for descriptors carrying the async marker. Their spans
	// are completed when the result is awaited or received.
	async     bool
	operation string
	tracer    trace.Tracer
	config    *instrumentation.TraceConfig
	logger    *slog.Logger
	metrics   *metrics.Client
}

// call describes an intercepted invocation. request is only evaluated when
// the span is recording.
type call struct {
	model   string
	request func() (*Request, error)
}

// start opens the span of c and records its request attributes. The
// returned context carries the span.
func (ic *interceptor) start(ctx context.Context, c call) (context.Context, *callSpan) {
	ctx, span := ic.tracer.Start(ctx, ic.descriptor.SpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(semconvai.LLMVendor, vendor),
			attribute.String(semconvai.LLMRequestType, string(semconvai.LLMRequestTypeCompletion)),
		),
	)
	s := &callSpan{span: span, logger: ic.logger, metrics: ic.metrics.StartCall(ic.operation, c.model)}

	sendPrompts := ic.config.ShouldSendPrompts(ctx)
	s.recordRequest(func() ([]attribute.KeyValue, error) {
		req, err := c.request()
		if err != nil {
			return nil, err
		}
		return buildRequestAttributes(req, sendPrompts, ic.config), nil
	})
	return ctx, s
}

// bypass reports whether the call must go straight to the original.
func (ic *interceptor) bypass(ctx context.Context) bool {
	return ic == nil || instrumentation.IsSuppressed(ctx)
}

// interceptCall wraps a blocking call returning an immediate result.
func interceptCall[R any](ctx context.Context, ic *interceptor, c call, invoke func(context.Context) (R, error), response func(R) (*Response, error)) (R, error) {
	if ic.bypass(ctx) {
		return invoke(ctx)
	}
	ctx, s := ic.start(ctx, c)
	r, err := invoke(ctx)
	if err != nil {
		s.endOnError(ctx, err)
		return r, err
	}
	s.complete(ctx, func() (*Response, error) { return response(r) })
	return r, nil
}

// interceptSeq wraps a call returning a lazily produced sequence.
func interceptSeq[C any](ctx context.Context, ic *interceptor, c call, invoke func(context.Context) iter.Seq2[C, error], chunk chunkFunc[C]) iter.Seq2[C, error] {
	if ic.bypass(ctx) {
		return invoke(ctx)
	}
	ctx, s := ic.start(ctx, c)
	seq := invoke(ctx)
	if seq == nil {
		s.end(ctx)
		return nil
	}
	return wrapSeq(ctx, s, seq, chunk)
}

// interceptFuture wraps a call whose result is awaited. The span is
// completed by the first Await that returns the call's outcome. An Await
// abandoned through its own ctx leaves the span open.
func interceptFuture[R any](ctx context.Context, ic *interceptor, c call, invoke func(context.Context) languagemodels.Future[R], response func(R) (*Response, error)) languagemodels.Future[R] {
	if ic.bypass(ctx) {
		return invoke(ctx)
	}
	ctx, s := ic.start(ctx, c)
	f := invoke(ctx)
	if f == nil {
		s.end(ctx)
		return nil
	}
	return languagemodels.FutureFunc[R](func(awaitCtx context.Context) (R, error) {
		r, err := f.Await(awaitCtx)
		if callerGaveUp(awaitCtx, err) {
			return r, err
		}
		if err != nil {
			s.endOnError(ctx, err)
			return r, err
		}
		s.complete(ctx, func() (*Response, error) { return response(r) })
		return r, nil
	})
}

// callerGaveUp reports whether err is the error of ctx itself, which means
// the wait was abandoned while the call goes on.
func callerGaveUp(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())
}

// interceptStream wraps a call returning an asynchronous stream.
func interceptStream[C any](ctx context.Context, ic *interceptor, c call, invoke func(context.Context) languagemodels.Stream[C], chunk chunkFunc[C]) languagemodels.Stream[C] {
	if ic.bypass(ctx) {
		return invoke(ctx)
	}
	ctx, s := ic.start(ctx, c)
	st := invoke(ctx)
	if st == nil {
		s.end(ctx)
		return nil
	}
	return wrapStream(s, st, chunk)
}
