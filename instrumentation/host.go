// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package instrumentation is the host framework for the LLM
// instrumentations in this module.
//
// An Instrumentor patches the calls of one vendor SDK so that they produce
// spans. A Host activates every registered Instrumentor whose SDK is linked
// into the running binary.
package instrumentation

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"sync"
)

// Instrumentor is implemented by each vendor instrumentation.
type Instrumentor interface {
	// InstrumentationDependencies returns the module paths that must be
	// linked into the binary for Instrument to be meaningful.
	InstrumentationDependencies() []string
	// Instrument activates the instrumentation. Calling it again while
	// active is a no-op.
	Instrument(opts ...Option) error
	// Uninstrument deactivates the instrumentation. It is idempotent.
	Uninstrument() error
}

// Host activates a set of Instrumentors.
type Host struct {
	instrumentors []Instrumentor
	// linkedModules returns the module paths linked into the binary.
	linkedModules func() map[string]struct{}

	mu     sync.Mutex
	active []Instrumentor
}

// NewHost returns a Host for the given instrumentors.
func NewHost(instrumentors ...Instrumentor) *Host {
	return &Host{instrumentors: instrumentors, linkedModules: buildInfoModules}
}

// InstrumentAll calls Instrument on every instrumentor whose dependencies are
// linked. Instrumentors with missing dependencies are skipped. The returned
// error joins every Instrument failure.
func (h *Host) InstrumentAll(opts ...Option) error {
	o := NewOptions(opts...)
	linked := h.linkedModules()

	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for _, in := range h.instrumentors {
		if slices.Contains(h.active, in) {
			continue
		}
		if missing := missingDependencies(in.InstrumentationDependencies(), linked); len(missing) > 0 {
			o.Logger.Debug("skipping instrumentation with missing dependencies",
				slog.String("instrumentor", fmt.Sprintf("%T", in)),
				slog.Any("missing", missing))
			continue
		}
		if err := in.Instrument(opts...); err != nil {
			errs = append(errs, fmt.Errorf("failed to instrument %T: %w", in, err))
			continue
		}
		h.active = append(h.active, in)
	}
	return errors.Join(errs...)
}

// UninstrumentAll reverses InstrumentAll.
func (h *Host) UninstrumentAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for _, in := range h.active {
		if err := in.Uninstrument(); err != nil {
			errs = append(errs, fmt.Errorf("failed to uninstrument %T: %w", in, err))
		}
	}
	h.active = nil
	return errors.Join(errs...)
}

func missingDependencies(deps []string, linked map[string]struct{}) (missing []string) {
	for _, d := range deps {
		if _, ok := linked[d]; !ok {
			missing = append(missing, d)
		}
	}
	return
}

func buildInfoModules() map[string]struct{} {
	modules := map[string]struct{}{}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return modules
	}
	modules[info.Main.Path] = struct{}{}
	for _, dep := range info.Deps {
		modules[dep.Path] = struct{}{}
	}
	return modules
}
