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

package tracing

import (
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) { t.serviceName = name }
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) { t.serviceVersion = version }
}

// WithSampleRate sets the ratio of new traces to sample, in [0, 1].
// Requests that continue a remote trace follow the caller's decision.
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) { t.sampleRate = rate }
}

// WithStdout exports spans as JSON to w (os.Stdout when nil).
func WithStdout(w io.Writer) Option {
	return func(t *Tracer) {
		t.provider = StdoutProvider
		t.providerSet++
		if w != nil {
			t.stdout = w
		}
	}
}

// WithOTLP exports spans to an OTLP/HTTP collector. The endpoint may carry
// a scheme and path, e.g. "http://localhost:4318/v1/traces". An empty
// endpoint uses the OTEL_EXPORTER_OTLP_* environment variables.
func WithOTLP(endpoint string) Option {
	return func(t *Tracer) {
		t.provider = OTLPHTTPProvider
		t.providerSet++
		t.otlpEndpoint = endpoint
	}
}

// WithOTLPGRPC exports spans to an OTLP/gRPC collector, e.g.
// "http://localhost:4317" for a plaintext connection. An empty endpoint
// uses the OTEL_EXPORTER_OTLP_* environment variables.
func WithOTLPGRPC(endpoint string) Option {
	return func(t *Tracer) {
		t.provider = OTLPGRPCProvider
		t.providerSet++
		t.otlpEndpoint = endpoint
	}
}

// WithTracerProvider uses a caller-owned provider. Shutdown leaves it
// running.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customProvider = true
	}
}

// WithPropagator replaces the default W3C trace context and baggage
// propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		if p != nil {
			t.propagator = p
		}
	}
}

// WithGlobalTracerProvider registers the provider and propagator with the
// otel package globals.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) { t.registerGlobal = true }
}

// WithLogger sets the logger for lifecycle messages. Nil is ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}
