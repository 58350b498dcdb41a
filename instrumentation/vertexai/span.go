// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/5war00p/openllmetry/internal/metrics"
)

const (
	warnRequestAttributes  = "failed to set input attributes for VertexAI span"
	warnResponseAttributes = "failed to set response attributes for VertexAI span"
)

// callSpan is the span of one intercepted call. It is ended at most once.
type callSpan struct {
	span    trace.Span
	logger  *slog.Logger
	metrics *metrics.Call
	ended   atomic.Bool
}

// recordRequest sets the request attributes produced by build. A failure to
// build them is logged and otherwise ignored.
func (s *callSpan) recordRequest(build func() ([]attribute.KeyValue, error)) {
	if !s.span.IsRecording() {
		return
	}
	guard(s.logger, warnRequestAttributes, func() error {
		attrs, err := build()
		if err != nil {
			return err
		}
		s.span.SetAttributes(attrs...)
		return nil
	})
}

// complete records the response produced by convert and ends the span. A nil
// response is an empty result: the span is ended without a status. A failure
// to convert the response is logged and the status is still set to OK.
func (s *callSpan) complete(ctx context.Context, convert func() (*Response, error)) {
	if !s.claim() {
		return
	}
	empty := false
	guard(s.logger, warnResponseAttributes, func() error {
		resp, err := convert()
		if err != nil {
			return err
		}
		if resp == nil {
			empty = true
			return nil
		}
		if resp.Usage != nil {
			s.metrics.RecordTokenUsage(ctx, resp.Usage.Prompt, resp.Usage.Completion, resp.Usage.Total)
		}
		if s.span.IsRecording() {
			s.span.SetAttributes(buildResponseAttributes(resp)...)
		}
		return nil
	})
	if !empty && s.span.IsRecording() {
		s.span.SetStatus(codes.Ok, "")
	}
	s.finish(ctx, "")
}

// end ends the span.
func (s *callSpan) end(ctx context.Context) {
	if !s.claim() {
		return
	}
	s.finish(ctx, "")
}

// claim reports whether the caller is the one to end the span. Only the
// first call returns true.
func (s *callSpan) claim() bool { return s.ended.CompareAndSwap(false, true) }

func (s *callSpan) finish(ctx context.Context, errorType string) {
	s.span.End()
	s.metrics.RecordCompletion(ctx, errorType)
}

// endOnError records err as an exception event, sets the error status and
// ends the span.
func (s *callSpan) endOnError(ctx context.Context, err error) {
	if !s.claim() {
		return
	}
	errorType := errorType(err)
	s.span.AddEvent("exception", trace.WithAttributes(
		attribute.String("exception.type", errorType),
		attribute.String("exception.message", err.Error()),
	))
	s.span.SetStatus(codes.Error, err.Error())
	if errorType == errorTypeUnknown {
		s.finish(ctx, metrics.ErrorTypeFallback)
		return
	}
	s.finish(ctx, errorType)
}

// errorTypeUnknown is the exception.type of errors errorType cannot classify.
const errorTypeUnknown = "Error"

// errorType classifies err by the HTTP status of a genai.APIError.
func errorType(err error) string {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return errorTypeUnknown
		}
		apiErr = *apiErrPtr
	}
	switch apiErr.Code {
	case http.StatusBadRequest:
		return "BadRequestError"
	case http.StatusUnauthorized:
		return "AuthenticationError"
	case http.StatusForbidden:
		return "PermissionDeniedError"
	case http.StatusNotFound:
		return "NotFoundError"
	case http.StatusTooManyRequests:
		return "RateLimitError"
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return "InternalServerError"
	default:
		return errorTypeUnknown
	}
}

// guard runs fn, logging at WARN instead of propagating its error or panic.
func guard(logger *slog.Logger, msg string, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn(msg, slog.String("error", fmt.Sprint(r)))
		}
	}()
	if err := fn(); err != nil {
		logger.Warn(msg, slog.String("error", err.Error()))
	}
}
