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

package timeout

import (
	"log/slog"
	"time"

	"rivaas.dev/routecore/router"
)

// Option configures New.
type Option func(*config)

// WithDuration sets how long after the middleware runs the request
// context is cancelled. Zero or negative turns the middleware into a
// pass-through. Default 30s.
func WithDuration(d time.Duration) Option {
	return func(cfg *config) {
		cfg.duration = d
	}
}

// WithoutLogging suppresses the warn record written when the timeout
// handler fires.
func WithoutLogging() Option {
	return func(cfg *config) {
		cfg.logger = nil
	}
}

// WithLogger replaces slog.Default() as the destination of the "request
// timeout" warning. It carries method, path, route and timeout.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithHandler replaces the 503 problem response. handler runs on the
// request goroutine after the chain has returned, and only if the deadline
// had passed and the chain wrote nothing, so it may write freely.
//
//	timeout.New(timeout.WithHandler(func(c *router.Context, d time.Duration) {
//	    _ = c.String(http.StatusGatewayTimeout, "no answer within %s", d)
//	}))
func WithHandler(handler func(c *router.Context, timeout time.Duration)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}

// WithSkipPaths leaves requests whose path equals one of paths without a
// deadline.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, path := range paths {
			cfg.skipPaths[path] = true
		}
	}
}

// WithSkipRoutes leaves requests matched by one of patterns without a
// deadline. Prefer it over WithSkipPaths for parameterized routes.
//
//	timeout.New(timeout.WithSkipRoutes("/events/:topic"))
func WithSkipRoutes(patterns ...string) Option {
	return func(cfg *config) {
		for _, p := range patterns {
			cfg.skipRoutes[p] = true
		}
	}
}

// WithSkipPrefix leaves requests whose path starts with a prefix without
// a deadline.
func WithSkipPrefix(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.skipPrefixes = append(cfg.skipPrefixes, prefixes...)
	}
}

// WithSkip is consulted after the path, route and prefix lists; true
// leaves the request without a deadline.
func WithSkip(fn func(c *router.Context) bool) Option {
	return func(cfg *config) {
		cfg.skipFunc = fn
	}
}
