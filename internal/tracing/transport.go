// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/propagation"
)

// Transport returns an http.RoundTripper that injects the trace context of
// each request's context into its headers before calling base. A nil base
// means http.DefaultTransport.
func Transport(base http.RoundTripper, propagator propagation.TextMapPropagator) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &propagatingTransport{base: base, propagator: propagator}
}

type propagatingTransport struct {
	base       http.RoundTripper
	propagator propagation.TextMapPropagator
}

// RoundTrip implements http.RoundTripper.
func (t *propagatingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	req = req.Clone(req.Context())
	t.propagator.Inject(req.Context(), propagation.HeaderCarrier(req.Header))
	return t.base.RoundTrip(req)
}
