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
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Provider names the built-in exporter behind a Recorder.
type Provider string

const (
	// PrometheusProvider exposes a pull endpoint through Handler.
	PrometheusProvider Provider = "prometheus"
	// StdoutProvider pushes JSON snapshots to a writer every export interval.
	StdoutProvider Provider = "stdout"
	// OTLPProvider pushes to an OTLP/HTTP collector every export interval.
	OTLPProvider Provider = "otlp"
)

func (r *Recorder) initProvider(ctx context.Context) error {
	switch r.provider {
	case PrometheusProvider:
		return r.initPrometheus()
	case StdoutProvider:
		exporter, err := stdoutmetric.New(stdoutmetric.WithWriter(r.stdout))
		if err != nil {
			return fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		r.initPeriodic(exporter)
		return nil
	case OTLPProvider:
		exporter, err := otlpmetrichttp.New(ctx, otlpOptions(r.otlpEndpoint)...)
		if err != nil {
			return fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		r.initPeriodic(exporter)
		return nil
	default:
		return fmt.Errorf("unsupported metrics provider: %s", r.provider)
	}
}

// initPeriodic wires a push exporter. Handler stays nil.
func (r *Recorder) initPeriodic(exporter sdkmetric.Exporter) {
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(r.exportInterval))
	r.sdkProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(r.resource()),
	)
	r.meterProvider = r.sdkProvider
}

// otlpOptions maps "http://collector:4318/custom/path" to exporter
// options. "http://" selects plaintext.
func otlpOptions(endpoint string) []otlpmetrichttp.Option {
	if endpoint == "" {
		return nil
	}

	var opts []otlpmetrichttp.Option
	if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint = rest
		opts = append(opts, otlpmetrichttp.WithInsecure())
	} else if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint = rest
	}
	if host, path, ok := strings.Cut(endpoint, "/"); ok {
		endpoint = host
		opts = append(opts, otlpmetrichttp.WithURLPath("/"+path))
	}
	return append(opts, otlpmetrichttp.WithEndpoint(endpoint))
}
