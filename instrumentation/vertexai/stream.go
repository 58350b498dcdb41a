// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package vertexai

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"

	"github.com/5war00p/openllmetry/languagemodels"
)

// chunkFunc returns the text of a streamed chunk and its usage, if any.
type chunkFunc[C any] func(C) (string, *Usage)

// accumulator collects the text of a stream. The usage of the stream is the
// last one seen, as each chunk reports running totals.
type accumulator[C any] struct {
	chunk chunkFunc[C]
	text  strings.Builder
	usage *Usage
}

func (a *accumulator[C]) add(c C) {
	text, usage := a.chunk(c)
	a.text.WriteString(text)
	if usage != nil {
		a.usage = usage
	}
}

func (a *accumulator[C]) response() *Response {
	resp := StringResponse(a.text.String())
	resp.Usage = a.usage
	return resp
}

// wrapSeq returns a sequence yielding the same elements as seq. The span is
// completed once seq is exhausted and ended with an error if seq fails. If
// the consumer stops early the span stays open.
func wrapSeq[C any](ctx context.Context, s *callSpan, seq iter.Seq2[C, error], chunk chunkFunc[C]) iter.Seq2[C, error] {
	return func(yield func(C, error) bool) {
		// The span belongs to the first iteration; later ones pass through.
		if s.ended.Load() {
			for c, err := range seq {
				if !yield(c, err) {
					return
				}
			}
			return
		}
		acc := &accumulator[C]{chunk: chunk}
		for c, err := range seq {
			if err != nil {
				s.endOnError(ctx, err)
				yield(c, err)
				return
			}
			s.metrics.RecordFirstChunk(ctx)
			acc.add(c)
			if !yield(c, nil) {
				return
			}
		}
		s.complete(ctx, func() (*Response, error) { return acc.response(), nil })
	}
}

// tracedStream is the languagemodels.Stream counterpart of wrapSeq.
type tracedStream[C any] struct {
	src  languagemodels.Stream[C]
	span *callSpan
	acc  accumulator[C]
	done bool
}

func wrapStream[C any](s *callSpan, src languagemodels.Stream[C], chunk chunkFunc[C]) languagemodels.Stream[C] {
	return &tracedStream[C]{src: src, span: s, acc: accumulator[C]{chunk: chunk}}
}

// Recv implements languagemodels.Stream.
func (t *tracedStream[C]) Recv(ctx context.Context) (C, error) {
	c, err := t.src.Recv(ctx)
	if t.done || callerGaveUp(ctx, err) {
		return c, err
	}
	switch {
	case errors.Is(err, io.EOF):
		t.done = true
		t.span.complete(ctx, func() (*Response, error) { return t.acc.response(), nil })
	case err != nil:
		t.done = true
		t.span.endOnError(ctx, err)
	default:
		t.span.metrics.RecordFirstChunk(ctx)
		t.acc.add(c)
	}
	return c, err
}

// Close implements languagemodels.Stream. It does not end the span.
func (t *tracedStream[C]) Close() error { return t.src.Close() }
