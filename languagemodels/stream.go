// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package languagemodels

import (
	"context"
	"errors"
	"io"
	"iter"
)

// Stream is an asynchronous sequence of chunks.
//
// Recv returns io.EOF once the stream is exhausted. Any other error ends the
// stream. Close releases the resources of a stream that is not read to the
// end.
type Stream[T any] interface {
	Recv(ctx context.Context) (T, error)
	Close() error
}

type seqStream[T any] struct {
	next func() (T, error, bool)
	stop func()
	done bool
}

// StreamFromSeq returns a Stream that pulls from seq.
func StreamFromSeq[T any](seq iter.Seq2[T, error]) Stream[T] {
	next, stop := iter.Pull2(seq)
	return &seqStream[T]{next: next, stop: stop}
}

func (s *seqStream[T]) Recv(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if s.done {
		return zero, io.EOF
	}
	v, err, ok := s.next()
	if !ok {
		s.done = true
		return zero, io.EOF
	}
	if err != nil {
		s.done = true
		s.stop()
		return zero, err
	}
	return v, nil
}

func (s *seqStream[T]) Close() error {
	s.done = true
	s.stop()
	return nil
}

// Collect reads s to the end and closes it.
func Collect[T any](ctx context.Context, s Stream[T]) ([]T, error) {
	defer s.Close()
	var out []T
	for {
		v, err := s.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
