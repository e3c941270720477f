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
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/routecore/router"
)

const attrPrefixParam = "routecore.param."

// SpanStartHook runs after the request span starts, before the chain.
type SpanStartHook func(span trace.Span, c *router.Context)

// SpanFinishHook runs after the chain, before the span ends.
type SpanFinishHook func(span trace.Span, c *router.Context)

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareConfig)

type middlewareConfig struct {
	excludePaths    map[string]bool
	excludePrefixes []string
	recordParams    bool
	headers         []string
	startHook       SpanStartHook
	finishHook      SpanFinishHook
}

// WithExcludePaths skips tracing for exact paths.
func WithExcludePaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		for _, p := range paths {
			c.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips tracing for paths with the given prefixes.
func WithExcludePrefixes(prefixes ...string) MiddlewareOption {
	return func(c *middlewareConfig) {
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}

// WithRecordParams adds captured route parameters as routecore.param.<name>
// span attributes.
func WithRecordParams() MiddlewareOption {
	return func(c *middlewareConfig) { c.recordParams = true }
}

// WithHeaders records the named request headers as
// http.request.header.<name> attributes.
func WithHeaders(headers ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.headers = append(c.headers, headers...) }
}

// WithSpanStartHook sets a hook run when the span starts.
func WithSpanStartHook(hook SpanStartHook) MiddlewareOption {
	return func(c *middlewareConfig) { c.startHook = hook }
}

// WithSpanFinishHook sets a hook run before the span ends.
func WithSpanFinishHook(hook SpanFinishHook) MiddlewareOption {
	return func(c *middlewareConfig) { c.finishHook = hook }
}

func (cfg *middlewareConfig) excluded(path string) bool {
	if cfg.excludePaths[path] {
		return true
	}
	for _, p := range cfg.excludePrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Middleware returns router middleware that wraps each request in a
// server span. The span is named "METHOD /route/:pattern", or just the
// method when no route matched, and is placed in the request context for
// the rest of the chain.
//
// Register it first so recovery and the access log run inside the span:
//
//	r.Use(tr.Middleware(), recovery.New(), accesslog.New(...))
func (t *Tracer) Middleware(opts ...MiddlewareOption) router.HandlerFunc {
	cfg := &middlewareConfig{excludePaths: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		req := c.Request
		if req == nil || cfg.excluded(c.Path()) {
			c.Next()
			return
		}

		ctx := t.ExtractTraceContext(req.Context(), req.Header)

		name := c.Method()
		if p := c.RoutePattern(); p != "" {
			name += " " + p
		}
		ctx, span := t.tracer.Start(ctx, name, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if span.IsRecording() {
			attrs := []attribute.KeyValue{
				attribute.String("http.request.method", c.Method()),
				attribute.String("url.path", c.Path()),
				attribute.String("server.address", req.Host),
				attribute.String("user_agent.original", req.UserAgent()),
				attribute.String("network.protocol.version", strings.TrimPrefix(req.Proto, "HTTP/")),
			}
			if p := c.RoutePattern(); p != "" {
				attrs = append(attrs, attribute.String("http.route", p))
			}
			if cfg.recordParams {
				for _, p := range c.Params() {
					attrs = append(attrs, attribute.String(attrPrefixParam+p.Key, p.Value))
				}
			}
			for _, h := range cfg.headers {
				if v := req.Header.Get(h); v != "" {
					attrs = append(attrs, attribute.String("http.request.header."+strings.ToLower(h), v))
				}
			}
			span.SetAttributes(attrs...)
		}

		c.Request = req.WithContext(ctx)
		if cfg.startHook != nil {
			cfg.startHook(span, c)
		}

		c.Next()

		status := c.StatusCode()
		span.SetAttributes(
			attribute.Int("http.response.status_code", status),
			attribute.String("routecore.result", c.Result().String()),
		)
		if status >= 500 {
			span.SetStatus(codes.Error, "")
		}
		if cfg.finishHook != nil {
			cfg.finishHook(span, c)
		}
	}
}
