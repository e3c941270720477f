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
	"io"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(r *Recorder) { r.serviceName = name }
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(r *Recorder) { r.serviceVersion = version }
}

// WithDurationBuckets overrides the request duration histogram boundaries
// (seconds). The values are sorted.
func WithDurationBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.durationBuckets = slices.Sorted(slices.Values(buckets))
		}
	}
}

// WithSizeBuckets overrides the response size histogram boundaries (bytes).
func WithSizeBuckets(buckets ...float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.sizeBuckets = slices.Sorted(slices.Values(buckets))
		}
	}
}

// WithRuntimeCollectors adds the Go runtime and process collectors to the
// Prometheus registry.
func WithRuntimeCollectors() Option {
	return func(r *Recorder) { r.runtimeCollectors = true }
}

// WithMeterProvider uses a caller-owned meter provider instead of the
// built-in Prometheus one. Handler returns nil and Shutdown leaves the
// provider running.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customProvider = true
	}
}

// WithGlobalMeterProvider registers the provider with otel.SetMeterProvider.
func WithGlobalMeterProvider() Option {
	return func(r *Recorder) { r.registerGlobal = true }
}

// WithMaxCustomMetrics caps the number of distinct custom counters and
// histograms. Default 100.
func WithMaxCustomMetrics(n int) Option {
	return func(r *Recorder) { r.maxCustomMetrics = n }
}

// WithLogger sets the logger for operational warnings. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithStdout pushes metrics as JSON to w every export interval. A nil w
// means os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(r *Recorder) {
		r.provider = StdoutProvider
		r.providerSet++
		if w != nil {
			r.stdout = w
		}
	}
}

// WithOTLP pushes metrics to an OTLP/HTTP collector. An empty endpoint
// leaves the exporter on its environment defaults.
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.providerSet++
		r.otlpEndpoint = endpoint
	}
}

// WithExportInterval sets the push interval for WithStdout and WithOTLP.
// Default 30s.
func WithExportInterval(interval time.Duration) Option {
	return func(r *Recorder) { r.exportInterval = interval }
}
