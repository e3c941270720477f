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

package accesslog

import (
	"log/slog"
	"math"
	"net"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"rivaas.dev/routecore/router"
	"rivaas.dev/routecore/router/middleware/requestid"
)

// New creates an access log middleware with structured logging.
//
// The logger must be provided via WithLogger option. If no logger is configured,
// the middleware will skip logging.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r := router.MustNew()
//	r.Use(accesslog.New(
//		accesslog.WithLogger(logger),
//		accesslog.WithExcludePaths("/health", "/metrics"),
//		accesslog.WithSlowThreshold(500 * time.Millisecond),
//	))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if cfg.logger == nil || c.Request == nil || cfg.excluded(c) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		// Decide after the handler, with the outcome known.
		status := c.StatusCode()
		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold
		id := requestid.FromContext(c.RequestContext())

		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				return
			}
			if cfg.sampleRate < 1.0 && !sampleByHash(id, cfg.sampleRate) {
				return
			}
		}

		fields := []any{
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"result", c.Result().String(),
			"duration_ms", duration.Milliseconds(),
			"bytes_sent", c.Size(),
			"user_agent", c.Request.UserAgent(),
			"client_ip", clientIP(c.Request.RemoteAddr),
			"host", c.Request.Host,
			"proto", c.Request.Proto,
		}
		if p := c.RoutePattern(); p != "" {
			fields = append(fields, "route", p)
		}
		if id != "" {
			fields = append(fields, "request_id", id)
		}
		if isSlow {
			fields = append(fields, "slow", true)
		}

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400, isSlow:
			level = slog.LevelWarn
		}
		cfg.logger.Log(c.RequestContext(), level, "access", fields...)
	}
}

// excluded reports whether the request is configured out of the log.
func (cfg *config) excluded(c *router.Context) bool {
	path := c.Path()
	if cfg.excludePaths[path] {
		return true
	}
	if p := c.RoutePattern(); p != "" && cfg.excludeRoutes[p] {
		return true
	}
	for _, prefix := range cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// sampleByHash provides deterministic sampling based on a hash of the ID.
// Same request ID always makes the same sampling decision across all replicas.
func sampleByHash(id string, rate float64) bool {
	if id == "" {
		return true
	}
	if rate <= 0 {
		return false
	}
	threshold := uint64(rate * math.MaxUint64)
	return xxhash.Sum64String(id) <= threshold
}

// clientIP returns the host part of a RemoteAddr.
func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
