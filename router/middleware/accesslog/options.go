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


// Package accesslog writes one slog record per request after the chain
// returns. Records carry the matched route pattern and the dispatch
// result, so 404 and 405 traffic is distinguishable from handler errors.
package accesslog

import (
	"log/slog"
	"time"
)

// Option configures New.
type Option func(*config)

type config struct {
	logger *slog.Logger

	excludePaths    map[string]bool // exact c.Path() values
	excludeRoutes   map[string]bool // matched patterns
	excludePrefixes []string

	// sampleRate in [0, 1] applies to fast non-error requests only.
	sampleRate    float64
	logErrorsOnly bool
	slowThreshold time.Duration
}

func defaultConfig() *config {
	return &config{
		excludePaths:  make(map[string]bool),
		excludeRoutes: make(map[string]bool),
		sampleRate:    1.0,
	}
}

// WithExcludePaths drops requests whose path equals one of paths. The
// comparison uses the path the router matched, after trailing slash
// handling.
//
//	accesslog.New(accesslog.WithExcludePaths("/health"))
func WithExcludePaths(paths ...string) Option {
	return func(c *config) {
		for _, path := range paths {
			c.excludePaths[path] = true
		}
	}
}

// WithExcludeRoutes drops requests matched by one of patterns, written as
// registered ("/assets/*path"). 404 and 405 requests have no pattern and
// are never dropped by this option.
func WithExcludeRoutes(patterns ...string) Option {
	return func(c *config) {
		for _, p := range patterns {
			c.excludeRoutes[p] = true
		}
	}
}

// WithExcludePrefixes drops requests whose path starts with a prefix.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(c *config) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithSampleRate keeps roughly rate of the successful, fast requests.
// The decision is the xxhash of the request ID against rate, so it needs
// the requestid middleware ahead of this one; requests without an ID are
// always kept. Status >= 400 and slow requests bypass sampling. rate is
// clamped to [0, 1].
//
//	r.Use(requestid.New(), accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithSampleRate(0.1),
//	))
func WithSampleRate(rate float64) Option {
	return func(c *config) {
		c.sampleRate = max(0.0, min(rate, 1.0))
	}
}

// WithErrorsOnly keeps only requests whose final StatusCode is 400 or
// above, plus slow requests when WithSlowThreshold is set.
func WithErrorsOnly() Option {
	return func(c *config) {
		c.logErrorsOnly = true
	}
}

// WithSlowThreshold marks requests taking at least threshold with
// slow=true and logs them at warn whatever the sampling settings. Zero
// disables it.
func WithSlowThreshold(threshold time.Duration) Option {
	return func(c *config) {
		c.slowThreshold = threshold
	}
}

// WithLogger sets the destination. Without it New returns a pass-through
// middleware. Levels follow the status: error for 5xx, warn for 4xx and
// slow requests, info otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
