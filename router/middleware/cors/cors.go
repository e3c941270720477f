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

package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"rivaas.dev/routecore/router"
)

// New returns a middleware that applies CORS headers and answers
// preflight requests with 204. Preflights for unrouted paths fall through
// to the 404 chain.
//
// Requests without an Origin header and requests from disallowed origins
// pass through untouched.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		fixedMethods = strings.Join(cfg.allowedMethods, ", ")
		headers      = strings.Join(cfg.allowedHeaders, ", ")
		exposed      = strings.Join(cfg.exposedHeaders, ", ")
		maxAge       = ""
	)
	if cfg.maxAge > 0 {
		maxAge = strconv.Itoa(cfg.maxAge)
	}

	return func(c *router.Context) {
		if c.Request == nil {
			c.Next()
			return
		}
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		h := c.Header()
		h.Add("Vary", "Origin")

		allowOrigin, ok := cfg.resolveOrigin(origin)
		if !ok {
			c.Next()
			return
		}
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		if cfg.allowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if !isPreflight(c) {
			if exposed != "" {
				h.Set("Access-Control-Expose-Headers", exposed)
			}
			c.Next()
			return
		}

		if c.Result() == router.NotFound {
			c.Next()
			return
		}

		methods := fixedMethods
		if methods == "" {
			methods = strings.Join(pathMethods(c), ", ")
		}
		if methods != "" {
			h.Set("Access-Control-Allow-Methods", methods)
		}
		if headers != "" {
			h.Set("Access-Control-Allow-Headers", headers)
		}
		if maxAge != "" {
			h.Set("Access-Control-Max-Age", maxAge)
		}
		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")
		c.Status(http.StatusNoContent)
	}
}

// resolveOrigin returns the Access-Control-Allow-Origin value for origin.
func (cfg *config) resolveOrigin(origin string) (string, bool) {
	switch {
	case cfg.allowAllOrigins && !cfg.allowCredentials:
		return "*", true
	case cfg.allowAllOrigins:
		return origin, true
	case slices.Contains(cfg.allowedOrigins, origin):
		return origin, true
	case cfg.allowOriginFunc != nil && cfg.allowOriginFunc(origin):
		return origin, true
	}
	return "", false
}

func isPreflight(c *router.Context) bool {
	return c.Request.Method == http.MethodOptions &&
		c.Request.Header.Get("Access-Control-Request-Method") != ""
}

// pathMethods lists the methods registered for the request path: the
// 405 allow list, or OPTIONS alone when an OPTIONS route matched.
func pathMethods(c *router.Context) []string {
	switch c.Result() {
	case router.MethodNotAllowed:
		return c.AllowedMethods()
	case router.Matched:
		return []string{c.Method()}
	}
	return nil
}
