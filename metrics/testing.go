// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"context"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// TestRecorder pairs a Recorder with a manual reader so tests can collect
// what was recorded without a scrape.
type TestRecorder struct {
	*Recorder
	reader *sdkmetric.ManualReader
}

// NewTestRecorder builds a Recorder over an SDK provider with a manual
// reader. The provider is shut down when the test ends.
func NewTestRecorder(tb testing.TB, opts ...Option) *TestRecorder {
	tb.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	tb.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	rec, err := New(append(opts, WithMeterProvider(provider))...)
	if err != nil {
		tb.Fatalf("metrics.New: %v", err)
	}
	return &TestRecorder{Recorder: rec, reader: reader}
}

// Collect returns every metric recorded so far, keyed by instrument name.
func (tr *TestRecorder) Collect(tb testing.TB) map[string]metricdata.Metrics {
	tb.Helper()

	var rm metricdata.ResourceMetrics
	if err := tr.reader.Collect(context.Background(), &rm); err != nil {
		tb.Fatalf("collect: %v", err)
	}

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}
