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
	"fmt"
	"regexp"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rivaas.dev/routecore/router"
)

// MiddlewareOption configures the metrics middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	pathFilter *pathFilter
	err        error
}

// WithExcludePaths excludes exact paths from metrics collection.
//
//	r.Use(metrics.Middleware(recorder, metrics.WithExcludePaths("/health", "/metrics")))
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.pathFilter.addPaths(paths...) }
}

// WithExcludePrefixes excludes paths with the given prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.pathFilter.addPrefixes(prefixes...) }
}

// WithExcludePatterns excludes paths matching the given regular
// expressions. An invalid pattern makes Middleware panic.
func WithExcludePatterns(patterns ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				c.err = fmt.Errorf("invalid regex pattern for path exclusion %q: %w", p, err)
				return
			}
			c.pathFilter.addPatterns(re)
		}
	}
}

// Middleware returns router middleware that records the request
// instruments. Register it globally so 404 and 405 outcomes are counted
// too:
//
//	r.Use(metrics.Middleware(recorder))
//
// Unmatched requests carry an empty http.route attribute.
func Middleware(rec *Recorder, opts ...MiddlewareOption) router.HandlerFunc {
	cfg := &middlewareConfig{pathFilter: newPathFilter()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		panic(cfg.err)
	}

	return func(c *router.Context) {
		if cfg.pathFilter.shouldExclude(c.Path()) {
			c.Next()
			return
		}

		ctx := c.RequestContext()
		method := attribute.String("http.request.method", c.Method())
		active := metric.WithAttributes(method)

		rec.activeRequests.Add(ctx, 1, active)
		start := time.Now()
		defer func() {
			elapsed := time.Since(start).Seconds()
			rec.activeRequests.Add(ctx, -1, active)

			// Recorded in a defer so a panic that escapes still counts.
			attrs := metric.WithAttributes(
				method,
				attribute.String("http.route", c.RoutePattern()),
				attribute.Int("http.response.status_code", c.StatusCode()),
				attribute.String("routecore.result", c.Result().String()),
			)
			rec.requestDuration.Record(ctx, elapsed, attrs)
			rec.responseSize.Record(ctx, c.Size(), attrs)
			rec.dispatchResults.Add(ctx, 1, metric.WithAttributes(
				method,
				attribute.String("routecore.result", c.Result().String()),
			))
		}()

		c.Next()
	}
}
