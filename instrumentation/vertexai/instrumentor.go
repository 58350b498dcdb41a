// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

// Package vertexai instruments the Gemini and Vertex AI SDK
// (google.golang.org/genai) and the text-prediction models of
// github.com/5war00p/openllmetry/languagemodels.
//
// Go has no runtime method patching, so calls are instrumented through
// proxies: wrap a client's Models with Models, a chat with Chat or
// CreateChat, and a text model with TextGenerationModel. A proxy creates
// spans while an Instrumentor is active and calls straight through to the
// wrapped value otherwise.
//
//	inst := &vertexai.Instrumentor{}
//	if err := inst.Instrument(instrumentation.WithTracerProvider(tp)); err != nil {
//		return err
//	}
//	defer inst.Uninstrument()
//	models := vertexai.Models(client.Models)
//	resp, err := models.GenerateContent(ctx, "gemini-2.0-flash", genai.Text("Hi"), nil)
package vertexai

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/5war00p/openllmetry/instrumentation"
	"github.com/5war00p/openllmetry/internal/metrics"
	"github.com/5war00p/openllmetry/internal/version"
)

// ScopeName is the instrumentation scope of the tracer and meter.
const ScopeName = "github.com/5war00p/openllmetry/instrumentation/vertexai"

var (
	// ErrUnknownMethod is returned by Instrument for a descriptor that no
	// proxy dispatches.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrDuplicateMethod is returned by Instrument for a method listed twice.
	ErrDuplicateMethod = errors.New("duplicate method")
)

// bindings is the table the proxies dispatch through. It is nil while no
// Instrumentor is active.
var bindings atomic.Pointer[bindingTable]

type bindingTable struct {
	interceptors map[string]*interceptor
}

// lookup returns the interceptor bound to the method key, or nil. Only an
// interceptor of the matching sync or async variant is returned.
func lookup(key string, async bool) *interceptor {
	t := bindings.Load()
	if t == nil {
		return nil
	}
	if ic := t.interceptors[key]; ic != nil && ic.async == async {
		return ic
	}
	return nil
}

// Ensure Instrumentor implements instrumentation.Instrumentor.
var _ instrumentation.Instrumentor = (*Instrumentor)(nil)

// Instrumentor activates the proxies of this package.
//
// Only one Instrumentor is active at a time: activating another one replaces
// the bindings of the first.
type Instrumentor struct {
	// Methods are the methods to instrument. WrappedMethods when nil.
	Methods []MethodDescriptor

	mu     sync.Mutex
	active *bindingTable
}

// InstrumentationDependencies implements [instrumentation.Instrumentor.InstrumentationDependencies].
func (i *Instrumentor) InstrumentationDependencies() []string {
	return []string{genaiPackage}
}

// Instrument implements [instrumentation.Instrumentor.Instrument].
func (i *Instrumentor) Instrument(opts ...instrumentation.Option) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active != nil {
		return nil
	}

	o := instrumentation.NewOptions(opts...)
	tracer := o.TracerProvider.Tracer(ScopeName, trace.WithInstrumentationVersion(version.Scope()))
	meter := o.MeterProvider.Meter(ScopeName, metric.WithInstrumentationVersion(version.Scope()))
	client := metrics.NewClient(meter, metrics.SystemVertexAI)

	methods := i.Methods
	if methods == nil {
		methods = WrappedMethods
	}
	table := &bindingTable{interceptors: make(map[string]*interceptor, len(methods))}
	for _, d := range methods {
		key := d.String()
		t, ok := targets[key]
		if !ok {
			return fmt.Errorf("cannot instrument %s: %w", key, ErrUnknownMethod)
		}
		if _, ok := table.interceptors[key]; ok {
			return fmt.Errorf("cannot instrument %s: %w", key, ErrDuplicateMethod)
		}
		table.interceptors[key] = &interceptor{
			descriptor: d,
			async:      d.IsAsync(),
			operation:  t.operation,
			tracer:     tracer,
			config:     o.TraceConfig,
			logger:     o.Logger,
			metrics:    client,
		}
	}

	i.active = table
	bindings.Store(table)
	return nil
}

// Uninstrument implements [instrumentation.Instrumentor.Uninstrument].
func (i *Instrumentor) Uninstrument() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.active == nil {
		return nil
	}
	bindings.CompareAndSwap(i.active, nil)
	i.active = nil
	return nil
}
