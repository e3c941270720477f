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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	rerrors "rivaas.dev/routecore/errors"
	"rivaas.dev/routecore/router"
)

// ErrRequestTimeout is the cause of the default timeout response.
var ErrRequestTimeout = errors.New("request timed out")

// config holds the configuration for the timeout middleware.
type config struct {
	// duration is the deadline added to the request context
	duration time.Duration

	// logger is used to log timeout events
	logger *slog.Logger

	// handler is called when the deadline passed and nothing was written
	handler func(c *router.Context, timeout time.Duration)

	// skipPaths are exact paths that should not have timeout applied
	skipPaths map[string]bool

	// skipRoutes are route patterns that should not have timeout applied
	skipRoutes map[string]bool

	// skipPrefixes are path prefixes that should not have timeout applied
	skipPrefixes []string

	// skipFunc is a custom function to determine if timeout should be skipped
	skipFunc func(c *router.Context) bool
}

// defaultConfig returns the default configuration for timeout middleware.
func defaultConfig() *config {
	return &config{
		duration:   30 * time.Second,
		logger:     slog.Default(),
		handler:    defaultHandler,
		skipPaths:  make(map[string]bool),
		skipRoutes: make(map[string]bool),
	}
}

// defaultHandler writes a 503 problem response.
func defaultHandler(c *router.Context, _ time.Duration) {
	_ = c.Problem(rerrors.WithStatus(ErrRequestTimeout, http.StatusServiceUnavailable))
}

// shouldSkip determines if timeout should be skipped for the given request.
func shouldSkip(cfg *config, c *router.Context) bool {
	path := c.Path()

	if cfg.skipPaths[path] {
		return true
	}
	if p := c.RoutePattern(); p != "" && cfg.skipRoutes[p] {
		return true
	}
	for _, prefix := range cfg.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return cfg.skipFunc != nil && cfg.skipFunc(c)
}

// New returns a middleware that puts a deadline on the request context.
//
// The rest of the chain runs on the calling goroutine with the derived
// context; handlers observe the deadline through c.RequestContext() and are
// expected to return once it is done. When the chain returns after the
// deadline without having written a response, the timeout handler answers
// (503 problem details by default). A deadline already set by the server
// or a parent middleware is kept if it is earlier.
//
// Basic usage (uses 30s default):
//
//	r := router.MustNew()
//	r.Use(timeout.New())
//
// With custom duration:
//
//	r.Use(timeout.New(timeout.WithDuration(5 * time.Second)))
//
// Skip long-running routes:
//
//	r.Use(timeout.New(
//	    timeout.WithSkipRoutes("/events/:topic"),
//	    timeout.WithSkipPrefix("/admin"),
//	))
//
// Respecting timeouts in handlers:
//
//	r.GET("/slow", func(c *router.Context) {
//	    rows, err := db.QueryContext(c.RequestContext(), query)
//	    if err != nil {
//	        return // the middleware answers if the deadline passed
//	    }
//	    // ...
//	})
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if c.Request == nil || cfg.duration <= 0 || shouldSkip(cfg, c) {
			c.Next()
			return
		}

		req := c.Request
		ctx, cancel := context.WithTimeout(req.Context(), cfg.duration)
		defer cancel()
		c.Request = req.WithContext(ctx)

		c.Next()

		if !errors.Is(ctx.Err(), context.DeadlineExceeded) || c.Written() {
			return
		}

		if cfg.logger != nil {
			cfg.logger.WarnContext(ctx, "request timeout",
				"method", c.Method(),
				"path", c.Path(),
				"route", c.RoutePattern(),
				"timeout", cfg.duration.String(),
			)
		}
		if cfg.handler != nil {
			cfg.handler(c, cfg.duration)
		}
	}
}
