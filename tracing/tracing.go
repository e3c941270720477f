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
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "rivaas.dev/routecore/tracing"

// Provider selects the span exporter.
type Provider string

const (
	// NoopProvider records spans without exporting them.
	NoopProvider Provider = "noop"
	// StdoutProvider writes spans as JSON.
	StdoutProvider Provider = "stdout"
	// OTLPHTTPProvider batches spans to an OTLP/HTTP endpoint.
	OTLPHTTPProvider Provider = "otlp-http"
	// OTLPGRPCProvider batches spans to an OTLP/gRPC endpoint.
	OTLPGRPCProvider Provider = "otlp-grpc"
)

// ErrInvalidSampleRate is returned for a sample rate outside [0, 1].
var ErrInvalidSampleRate = errors.New("sample rate must be between 0 and 1")

// Tracer holds the tracer provider, tracer and propagator.
// All methods are safe for concurrent use.
type Tracer struct {
	tracerProvider trace.TracerProvider
	sdkProvider    *sdktrace.TracerProvider // nil when caller-owned
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator
	logger         *slog.Logger

	provider       Provider
	providerSet    int
	serviceName    string
	serviceVersion string
	sampleRate     float64
	otlpEndpoint   string
	stdout         io.Writer

	customProvider bool
	registerGlobal bool
}

// Option configures a Tracer.
type Option func(*Tracer)

func newDefaultTracer() *Tracer {
	return &Tracer{
		provider:    NoopProvider,
		serviceName: "routecore",
		sampleRate:  1.0,
		stdout:      os.Stdout,
		logger:      slog.New(slog.DiscardHandler),
		propagator: propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	}
}

// New creates a Tracer. ctx bounds exporter construction only.
func New(ctx context.Context, opts ...Option) (*Tracer, error) {
	t := newDefaultTracer()
	for _, opt := range opts {
		opt(t)
	}

	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := t.initProvider(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	t.tracer = t.tracerProvider.Tracer(tracerName)
	if t.registerGlobal {
		otel.SetTracerProvider(t.tracerProvider)
		otel.SetTextMapPropagator(t.propagator)
	}

	t.logger.Info("tracing initialized", "provider", string(t.provider), "service", t.serviceName)
	return t, nil
}

// MustNew creates a Tracer or panics on error.
func MustNew(ctx context.Context, opts ...Option) *Tracer {
	t, err := New(ctx, opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize tracing: %v", err))
	}
	return t
}

func (t *Tracer) validate() error {
	if t.providerSet > 1 {
		return errors.New("conflicting provider options: only one of WithStdout, WithOTLP or WithOTLPGRPC can be used")
	}
	if t.customProvider && t.tracerProvider == nil {
		return errors.New("custom tracer provider is nil")
	}
	if t.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if t.sampleRate < 0 || t.sampleRate > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRate, t.sampleRate)
	}
	if t.provider == StdoutProvider && t.stdout == nil {
		return errors.New("stdout writer cannot be nil")
	}
	return nil
}

func (t *Tracer) initProvider(ctx context.Context) error {
	if t.customProvider {
		return nil
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(t.resource()),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(t.sampleRate))),
	}

	switch t.provider {
	case NoopProvider:
	case StdoutProvider:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(t.stdout))
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		// Synchronous so output is complete when a request returns.
		opts = append(opts, sdktrace.WithSyncer(exporter))
	case OTLPHTTPProvider:
		exporter, err := otlptracehttp.New(ctx, otlpOptions(t.otlpEndpoint)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP HTTP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case OTLPGRPCProvider:
		exporter, err := otlptracegrpc.New(ctx, otlpGRPCOptions(t.otlpEndpoint)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	default:
		return fmt.Errorf("unsupported tracing provider: %s", t.provider)
	}

	t.sdkProvider = sdktrace.NewTracerProvider(opts...)
	t.tracerProvider = t.sdkProvider
	return nil
}

func (t *Tracer) resource() *resource.Resource {
	attrs := []attribute.KeyValue{attribute.String("service.name", t.serviceName)}
	if t.serviceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", t.serviceVersion))
	}
	return resource.NewSchemaless(attrs...)
}

// otlpOptions turns an endpoint such as "http://collector:4318/v1/traces"
// into exporter options. A plain http scheme selects an insecure
// connection; an empty endpoint keeps the exporter's environment defaults.
func otlpOptions(endpoint string) []otlptracehttp.Option {
	if endpoint == "" {
		return nil
	}

	var opts []otlptracehttp.Option
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = rest
		opts = append(opts, otlptracehttp.WithInsecure())
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = rest
	}
	if host, path, ok := strings.Cut(endpoint, "/"); ok {
		endpoint = host
		opts = append(opts, otlptracehttp.WithURLPath("/"+path))
	}
	return append(opts, otlptracehttp.WithEndpoint(endpoint))
}

// otlpGRPCOptions maps an endpoint such as "http://collector:4317" to
// exporter options. "http://" selects a plaintext connection.
func otlpGRPCOptions(endpoint string) []otlptracegrpc.Option {
	if endpoint == "" {
		return nil
	}

	var opts []otlptracegrpc.Option
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = rest
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		endpoint = strings.TrimPrefix(endpoint, "https://")
	}
	endpoint, _, _ = strings.Cut(endpoint, "/")
	return append(opts, otlptracegrpc.WithEndpoint(endpoint))
}

// Tracer returns the underlying OpenTelemetry tracer.
func (t *Tracer) Tracer() trace.Tracer { return t.tracer }

// TracerProvider returns the provider spans are created from.
func (t *Tracer) TracerProvider() trace.TracerProvider { return t.tracerProvider }

// Propagator returns the propagator used to read and write trace headers.
func (t *Tracer) Propagator() propagation.TextMapPropagator { return t.propagator }

// ServiceName returns the service.name resource attribute.
func (t *Tracer) ServiceName() string { return t.serviceName }

// Provider returns the configured exporter kind.
func (t *Tracer) Provider() Provider { return t.provider }

// StartSpan starts an internal span as a child of ctx.
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// ExtractTraceContext returns ctx with the remote span context carried by
// headers, if any.
func (t *Tracer) ExtractTraceContext(ctx context.Context, headers http.Header) context.Context {
	return t.propagator.Extract(ctx, propagation.HeaderCarrier(headers))
}

// InjectTraceContext writes the span context of ctx into headers, for
// outgoing requests.
func (t *Tracer) InjectTraceContext(ctx context.Context, headers http.Header) {
	t.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// Shutdown flushes and stops the provider when the Tracer owns it.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.sdkProvider == nil {
		return nil
	}
	if err := t.sdkProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}
	return nil
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return ""
}

// SpanID returns the span ID of the span in ctx, or "".
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}
	return ""
}
