// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package instrumentation

import "context"

type (
	suppressInstrumentationKey struct{}
	contentTracingOverrideKey  struct{}
)

// WithSuppressedInstrumentation returns a context under which instrumented
// calls go straight to the underlying implementation without creating spans.
//
// Exporters and other telemetry plumbing use this to avoid tracing their own
// calls.
func WithSuppressedInstrumentation(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressInstrumentationKey{}, true)
}

// IsSuppressed reports whether instrumentation is suppressed for ctx.
func IsSuppressed(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	suppressed, _ := ctx.Value(suppressInstrumentationKey{}).(bool)
	return suppressed
}

// WithContentTracingOverride returns a context under which prompt and
// completion content is recorded even when TraceConfig.TraceContent is false.
func WithContentTracingOverride(ctx context.Context) context.Context {
	return context.WithValue(ctx, contentTracingOverrideKey{}, true)
}

// ContentTracingOverride reports whether ctx carries the content-tracing
// override.
func ContentTracingOverride(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	override, _ := ctx.Value(contentTracingOverrideKey{}).(bool)
	return override
}
