// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package languagemodels

import "context"

// Future is the result of an asynchronous call. Await blocks until the
// result is available or ctx is done.
type Future[T any] interface {
	Await(ctx context.Context) (T, error)
}

// FutureFunc adapts a function to Future.
type FutureFunc[T any] func(ctx context.Context) (T, error)

// Await implements Future.
func (f FutureFunc[T]) Await(ctx context.Context) (T, error) { return f(ctx) }

type goFuture[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go runs fn on a new goroutine and returns a Future for its result. The
// result is memoized: every Await after completion returns the same values.
//
// An Await that gives up because its own ctx is done returns ctx.Err()
// without stopping fn; fn observes the ctx passed to Go.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) Future[T] {
	f := &goFuture[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Ready returns a Future that is already complete.
func Ready[T any](val T, err error) Future[T] {
	f := &goFuture[T]{done: make(chan struct{}), val: val, err: err}
	close(f.done)
	return f
}

func (f *goFuture[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
