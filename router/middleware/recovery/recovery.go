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

package recovery

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	rerrors "rivaas.dev/routecore/errors"
	"rivaas.dev/routecore/router"
)

// config holds the configuration for the recovery middleware.
type config struct {
	// stackTrace enables/disables capturing stack traces on panic
	stackTrace bool

	// stackSize sets the maximum size of the stack trace in bytes
	stackSize int

	// logger is used by the default log function
	logger *slog.Logger

	// logFunc replaces the default log function when set
	logFunc func(c *router.Context, err any, stack []byte)

	// handler writes the response after a panic
	handler func(c *router.Context, err any)
}

// defaultConfig returns the default configuration for recovery middleware.
func defaultConfig() *config {
	return &config{
		stackTrace: true,
		stackSize:  4 << 10, // 4KB
		logger:     slog.Default(),
		handler:    defaultHandler,
	}
}

// defaultHandler writes a 500 problem response through the router's
// problem formatter. The recovered value is not exposed to the client.
func defaultHandler(c *router.Context, err any) {
	_ = c.Problem(rerrors.Internal(err))
}

// New returns a middleware that recovers from panics in the rest of the
// chain. It logs the panic, marks the active span as failed and writes a
// 500 response unless one was already started.
//
// http.ErrAbortHandler is re-panicked so net/http can abort the
// connection as it expects.
//
// Basic usage:
//
//	r := router.MustNew()
//	r.Use(recovery.New())
//
// With custom configuration:
//
//	r.Use(recovery.New(
//	    recovery.WithStackSize(8 << 10),
//	    recovery.WithLogger(logger),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if e, ok := err.(error); ok && errors.Is(e, http.ErrAbortHandler) {
				panic(err)
			}

			markSpan(c, err)

			var stack []byte
			if cfg.stackTrace {
				stack = debug.Stack()
				if len(stack) > cfg.stackSize {
					stack = stack[:cfg.stackSize]
				}
			}

			if cfg.logFunc != nil {
				cfg.logFunc(c, err, stack)
			} else {
				cfg.log(c, err, stack)
			}

			if cfg.handler != nil && !c.Written() {
				cfg.handler(c, err)
			}
		}()

		c.Next()
	}
}

// log writes the panic to the configured slog logger.
func (cfg *config) log(c *router.Context, err any, stack []byte) {
	attrs := []any{
		"error", fmt.Sprint(err),
		"method", c.Method(),
		"path", c.Path(),
		"route", c.RoutePattern(),
	}
	if stack != nil {
		attrs = append(attrs, "stack", string(stack))
	}
	cfg.logger.ErrorContext(c.RequestContext(), "panic recovered", attrs...)
}

// markSpan records the panic on the request's span, if one is recording.
func markSpan(c *router.Context, err any) {
	span := trace.SpanFromContext(c.RequestContext())
	if !span.IsRecording() {
		return
	}

	span.SetStatus(codes.Error, "panic recovered")
	span.SetAttributes(
		attribute.Bool("exception.escaped", true),
		attribute.String("exception.type", fmt.Sprintf("%T", err)),
		attribute.String("exception.message", fmt.Sprint(err)),
	)
	if e, ok := err.(error); ok {
		span.RecordError(e)
	}
}
