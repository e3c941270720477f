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

// Package metrics records routing and request metrics with OpenTelemetry.
// By default they are exposed in Prometheus text format; WithStdout and
// WithOTLP push them instead, every WithExportInterval.
//
// # Basic Usage
//
//	recorder := metrics.MustNew(metrics.WithServiceName("orders"))
//	defer recorder.Shutdown(context.Background())
//
//	r := router.MustNew()
//	r.Use(metrics.Middleware(recorder, metrics.WithExcludePaths("/metrics")))
//	recorder.ObservePool(r)
//	recorder.Mount(r, "/metrics")
//
// # Instruments
//
// The middleware records, per request:
//   - http.server.request.duration (histogram, seconds)
//   - http.server.active_requests (up/down counter)
//   - http.server.response.body.size (histogram, bytes)
//   - routecore.dispatch.results (counter, labelled matched, not_found or
//     method_not_allowed)
//
// Requests are labelled with the route pattern, never the raw path, so
// the label set stays bounded however many distinct URLs arrive.
//
// ObservePool adds asynchronous gauges over the router's context pool.
//
// # Push Exporters
//
//	recorder := metrics.MustNew(
//	    metrics.WithOTLP("http://collector:4318"),
//	    metrics.WithExportInterval(10*time.Second),
//	)
//
// Handler is nil for push exporters and Mount does nothing. Shutdown
// flushes the last interval.
//
// # Global State
//
// New does not set the global OpenTelemetry meter provider unless
// WithGlobalMeterProvider is passed.
package metrics
