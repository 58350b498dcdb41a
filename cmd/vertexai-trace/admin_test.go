// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestStartAdminServer(t *testing.T) {
	for _, withPprof := range []bool{false, true} {
		t.Run(fmt.Sprintf("pprof=%v", withPprof), func(t *testing.T) {
			testAdminServer(t, withPprof)
		})
	}
}

func testAdminServer(t *testing.T, withPprof bool) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_calls_total", Help: "Test calls."})
	registry.MustRegister(counter)
	counter.Add(3)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	server := startAdminServer(lis, slog.New(slog.DiscardHandler), registry, withPprof)
	t.Cleanup(func() { _ = server.Shutdown(context.Background()) })

	pprofStatus := http.StatusNotFound
	if withPprof {
		pprofStatus = http.StatusOK
	}
	tests := []struct {
		path         string
		expectStatus int
		expectBody   string
	}{
		{path: "/metrics", expectStatus: http.StatusOK, expectBody: "test_calls_total 3"},
		{path: "/health", expectStatus: http.StatusOK, expectBody: "OK\n"},
		{path: "/debug/pprof/cmdline", expectStatus: pprofStatus},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get("http://" + lis.Addr().String() + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, tt.expectStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			require.Contains(t, string(body), tt.expectBody)
		})
	}
}
