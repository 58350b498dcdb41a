// Copyright Envoy AI Gateway Authors
// SPDX-License-Identifier: Apache-2.0
// The full text of the Apache license is available in the LICENSE file at
// the root of the repo.

package testotel

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// CollectMetric collects reader and returns the metric named name, failing
// the test when it was not recorded.
func CollectMetric(t testing.TB, reader metric.Reader, name string) metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(t.Context(), &rm))
	for _, sm := range rm.ScopeMetrics {
		if i := slices.IndexFunc(sm.Metrics, func(m metricdata.Metrics) bool { return m.Name == name }); i >= 0 {
			return sm.Metrics[i]
		}
	}
	require.FailNow(t, "metric not recorded", name)
	return metricdata.Metrics{}
}

// GetHistogramValues returns the count and sum of the data point of the
// float64 histogram name whose attributes equal attrs.
func GetHistogramValues(t testing.TB, reader metric.Reader, name string, attrs attribute.Set) (uint64, float64) {
	t.Helper()
	hist, ok := CollectMetric(t, reader, name).Data.(metricdata.Histogram[float64])
	require.True(t, ok, "%s is not a float64 histogram", name)
	i := slices.IndexFunc(hist.DataPoints, func(dp metricdata.HistogramDataPoint[float64]) bool {
		return dp.Attributes.Equals(&attrs)
	})
	require.GreaterOrEqual(t, i, 0, "no %s data point with attributes %v", name, attrs.ToSlice())
	return hist.DataPoints[i].Count, hist.DataPoints[i].Sum
}
