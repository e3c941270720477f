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

// Package recovery provides middleware for recovering from panics in HTTP
// handlers. Install it first in the global chain so it wraps every other
// link:
//
//	r := router.MustNew()
//	r.Use(recovery.New())
package recovery

import (
	"log/slog"

	"rivaas.dev/routecore/router"
)

// Option defines functional options for recovery middleware configuration.
type Option func(*config)

// WithStackTrace enables or disables stack trace capture.
// Default: true
//
// Example:
//
//	recovery.New(recovery.WithStackTrace(false))
func WithStackTrace(enabled bool) Option {
	return func(cfg *config) {
		cfg.stackTrace = enabled
	}
}

// WithStackSize sets the maximum size of the captured stack trace in bytes.
// Default: 4KB (4 << 10)
//
// Example:
//
//	recovery.New(recovery.WithStackSize(8 << 10)) // 8KB
func WithStackSize(size int) Option {
	return func(cfg *config) {
		cfg.stackSize = size
	}
}

// WithLogger sets the structured logger used by the default log function.
// Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithLogFunc replaces the default log function. It receives the context,
// the recovered value and the captured stack (nil when disabled).
//
// Example:
//
//	recovery.New(recovery.WithLogFunc(func(c *router.Context, err any, stack []byte) {
//	    metrics.PanicCount.Inc()
//	}))
func WithLogFunc(fn func(c *router.Context, err any, stack []byte)) Option {
	return func(cfg *config) {
		cfg.logFunc = fn
	}
}

// WithHandler sets a custom recovery handler function.
// The handler receives the context and the recovered value and is
// responsible for the response. It is not called when the response was
// already started.
//
// Example:
//
//	recovery.New(recovery.WithHandler(func(c *router.Context, err any) {
//	    c.JSON(http.StatusInternalServerError, map[string]string{"error": "Something went wrong"})
//	}))
func WithHandler(handler func(c *router.Context, err any)) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}
