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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	"rivaas.dev/routecore/router"
)

const meterName = "rivaas.dev/routecore/metrics"

var (
	// DefaultDurationBuckets are histogram boundaries for request duration
	// in seconds. A router dispatch is microseconds; handlers are not.
	DefaultDurationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

	// DefaultSizeBuckets are histogram boundaries for response size in bytes.
	DefaultSizeBuckets = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
)

var (
	// ErrMetricLimit is returned when a new custom metric would exceed
	// WithMaxCustomMetrics.
	ErrMetricLimit = errors.New("custom metric limit reached")

	// ErrInvalidMetricName is returned for an empty custom metric name.
	ErrInvalidMetricName = errors.New("invalid metric name")
)

// Recorder owns a meter provider and the request instruments.
// All methods are safe for concurrent use.
type Recorder struct {
	meterProvider metric.MeterProvider
	sdkProvider   *sdkmetric.MeterProvider // nil when the provider is caller-owned
	meter         metric.Meter

	registry *promclient.Registry
	handler  http.Handler
	logger   *slog.Logger

	requestDuration metric.Float64Histogram
	activeRequests  metric.Int64UpDownCounter
	responseSize    metric.Int64Histogram
	dispatchResults metric.Int64Counter

	customMu         sync.Mutex
	customCounters   map[string]metric.Int64Counter
	customHistograms map[string]metric.Float64Histogram
	maxCustomMetrics int

	durationBuckets   []float64
	sizeBuckets       []float64
	serviceName       string
	serviceVersion    string
	runtimeCollectors bool
	registerGlobal    bool
	customProvider    bool

	provider       Provider
	providerSet    int
	stdout         io.Writer
	otlpEndpoint   string
	exportInterval time.Duration

	pools []metric.Registration
	mu    sync.Mutex
}

func newDefaultRecorder() *Recorder {
	return &Recorder{
		logger:           slog.New(slog.DiscardHandler),
		durationBuckets:  DefaultDurationBuckets,
		sizeBuckets:      DefaultSizeBuckets,
		serviceName:      "routecore",
		provider:         PrometheusProvider,
		stdout:           os.Stdout,
		exportInterval:   30 * time.Second,
		maxCustomMetrics: 100,
		customCounters:   make(map[string]metric.Int64Counter),
		customHistograms: make(map[string]metric.Float64Histogram),
	}
}

// New creates a Recorder. Without WithMeterProvider it builds an SDK
// meter provider backed by a Prometheus exporter on a private registry,
// or by the push exporter WithStdout or WithOTLP selects.
func New(opts ...Option) (*Recorder, error) {
	r := newDefaultRecorder()
	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if !r.customProvider {
		if err := r.initProvider(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	if r.registerGlobal {
		otel.SetMeterProvider(r.meterProvider)
	}

	r.meter = r.meterProvider.Meter(meterName)
	if err := r.initInstruments(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	return r, nil
}

// MustNew creates a Recorder or panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize metrics: %v", err))
	}
	return r
}

func (r *Recorder) validate() error {
	if r.providerSet > 1 {
		return errors.New("conflicting provider options: only one of WithStdout or WithOTLP can be used")
	}
	if r.customProvider && r.meterProvider == nil {
		return errors.New("custom meter provider is nil")
	}
	if r.provider == StdoutProvider && r.stdout == nil {
		return errors.New("stdout writer is nil")
	}
	if r.provider != PrometheusProvider && r.exportInterval <= 0 {
		return fmt.Errorf("export interval must be positive, got %s", r.exportInterval)
	}
	if r.serviceName == "" {
		return errors.New("service name cannot be empty")
	}
	if r.maxCustomMetrics < 0 {
		return fmt.Errorf("maxCustomMetrics must not be negative, got %d", r.maxCustomMetrics)
	}
	return nil
}

func (r *Recorder) initPrometheus() error {
	r.registry = promclient.NewRegistry()
	if r.runtimeCollectors {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	exporter, err := prometheus.New(prometheus.WithRegisterer(r.registry))
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	r.sdkProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(r.resource()),
	)
	r.meterProvider = r.sdkProvider
	r.handler = promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
	return nil
}

func (r *Recorder) resource() *resource.Resource {
	attrs := []attribute.KeyValue{attribute.String("service.name", r.serviceName)}
	if r.serviceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", r.serviceVersion))
	}
	return resource.NewSchemaless(attrs...)
}

func (r *Recorder) initInstruments() error {
	var err error

	if r.requestDuration, err = r.meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(r.durationBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	if r.activeRequests, err = r.meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of in-flight HTTP server requests."),
		metric.WithUnit("{request}"),
	); err != nil {
		return fmt.Errorf("failed to create active requests counter: %w", err)
	}

	if r.responseSize, err = r.meter.Int64Histogram(
		"http.server.response.body.size",
		metric.WithDescription("Size of HTTP server response bodies."),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(r.sizeBuckets...),
	); err != nil {
		return fmt.Errorf("failed to create response size histogram: %w", err)
	}

	if r.dispatchResults, err = r.meter.Int64Counter(
		"routecore.dispatch.results",
		metric.WithDescription("Routing outcomes by result."),
		metric.WithUnit("{request}"),
	); err != nil {
		return fmt.Errorf("failed to create dispatch results counter: %w", err)
	}

	return nil
}

// Handler returns the Prometheus scrape handler, or nil when the Recorder
// pushes (WithStdout, WithOTLP) or was built with WithMeterProvider.
func (r *Recorder) Handler() http.Handler {
	return r.handler
}

// Mount registers the scrape handler as GET path on rt. It does nothing
// when there is no Prometheus handler.
func (r *Recorder) Mount(rt *router.Router, path string) {
	if r.handler == nil {
		return
	}
	h := r.handler
	rt.GET(path, func(c *router.Context) {
		h.ServeHTTP(c.Response, c.Request)
	})
}

// Provider reports the built-in exporter. It is meaningless with
// WithMeterProvider.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// MeterProvider returns the provider the instruments were created from.
func (r *Recorder) MeterProvider() metric.MeterProvider {
	return r.meterProvider
}

// ObservePool registers asynchronous instruments over rt's context pool:
// in-flight contexts, allocations and double releases. Calling it again
// for another router adds that router under its own name attribute.
func (r *Recorder) ObservePool(rt *router.Router, attrs ...attribute.KeyValue) error {
	inFlight, err := r.meter.Int64ObservableGauge(
		"routecore.context_pool.in_flight",
		metric.WithDescription("Contexts acquired and not yet released."),
		metric.WithUnit("{context}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool gauge: %w", err)
	}
	allocs, err := r.meter.Int64ObservableCounter(
		"routecore.context_pool.allocs",
		metric.WithDescription("Contexts allocated by the pool."),
		metric.WithUnit("{context}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool counter: %w", err)
	}
	doubles, err := r.meter.Int64ObservableCounter(
		"routecore.context_pool.double_releases",
		metric.WithDescription("Release calls on a context that was not in use."),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create pool counter: %w", err)
	}

	set := metric.WithAttributes(attrs...)
	reg, err := r.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := rt.PoolStats()
		o.ObserveInt64(inFlight, s.InFlight, set)
		o.ObserveInt64(allocs, int64(s.Allocs), set)
		o.ObserveInt64(doubles, int64(s.DoubleReleases), set)
		return nil
	}, inFlight, allocs, doubles)
	if err != nil {
		return fmt.Errorf("failed to register pool callback: %w", err)
	}

	r.mu.Lock()
	r.pools = append(r.pools, reg)
	r.mu.Unlock()
	return nil
}

// IncrementCounter adds one to the named custom counter, creating it on
// first use.
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attrs ...attribute.KeyValue) error {
	c, err := r.counter(name)
	if err != nil {
		return err
	}
	c.Add(ctx, 1, metric.WithAttributes(attrs...))
	return nil
}

// RecordHistogram records value on the named custom histogram, creating it
// on first use.
func (r *Recorder) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) error {
	h, err := r.histogram(name)
	if err != nil {
		return err
	}
	h.Record(ctx, value, metric.WithAttributes(attrs...))
	return nil
}

func (r *Recorder) counter(name string) (metric.Int64Counter, error) {
	if name == "" {
		return nil, ErrInvalidMetricName
	}
	r.customMu.Lock()
	defer r.customMu.Unlock()

	if c, ok := r.customCounters[name]; ok {
		return c, nil
	}
	if r.customCount() >= r.maxCustomMetrics {
		r.logger.Warn("custom metric limit reached", "metric", name, "limit", r.maxCustomMetrics)
		return nil, fmt.Errorf("%w: %s", ErrMetricLimit, name)
	}
	c, err := r.meter.Int64Counter(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %q: %w", name, err)
	}
	r.customCounters[name] = c
	return c, nil
}

func (r *Recorder) histogram(name string) (metric.Float64Histogram, error) {
	if name == "" {
		return nil, ErrInvalidMetricName
	}
	r.customMu.Lock()
	defer r.customMu.Unlock()

	if h, ok := r.customHistograms[name]; ok {
		return h, nil
	}
	if r.customCount() >= r.maxCustomMetrics {
		r.logger.Warn("custom metric limit reached", "metric", name, "limit", r.maxCustomMetrics)
		return nil, fmt.Errorf("%w: %s", ErrMetricLimit, name)
	}
	h, err := r.meter.Float64Histogram(name)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram %q: %w", name, err)
	}
	r.customHistograms[name] = h
	return h, nil
}

// customCount must be called with customMu held.
func (r *Recorder) customCount() int {
	return len(r.customCounters) + len(r.customHistograms)
}

// Shutdown unregisters pool callbacks and, when the Recorder owns its
// meter provider, flushes and stops it.
func (r *Recorder) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	pools := r.pools
	r.pools = nil
	r.mu.Unlock()

	var errs []error
	for _, reg := range pools {
		if err := reg.Unregister(); err != nil {
			errs = append(errs, err)
		}
	}
	if r.sdkProvider != nil {
		if err := r.sdkProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	return errors.Join(errs...)
}
