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

package security

import (
	"fmt"
	"maps"
	"net/http"
	"slices"

	"rivaas.dev/routecore/router"
)

type header struct {
	name  string
	value string
}

// New returns a middleware that sets security headers on every response.
//
// Defaults:
//   - X-Frame-Options: DENY
//   - X-Content-Type-Options: nosniff
//   - X-XSS-Protection: 0
//   - Strict-Transport-Security: max-age=31536000; includeSubDomains (TLS only)
//   - Content-Security-Policy: default-src 'self'
//   - Referrer-Policy: strict-origin-when-cross-origin
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	headers := cfg.headers()
	hsts := cfg.hstsValue()

	return func(c *router.Context) {
		h := c.Header()
		for _, kv := range headers {
			h[kv.name] = []string{kv.value}
		}
		if hsts != "" && c.Request != nil && c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}
		c.Next()
	}
}

// headers returns the static header set in canonical form. Custom headers
// come last, sorted, and override built-in ones of the same name.
func (cfg *config) headers() []header {
	var out []header
	add := func(name, value string) {
		if value == "" {
			return
		}
		name = http.CanonicalHeaderKey(name)
		for i := range out {
			if out[i].name == name {
				out[i].value = value
				return
			}
		}
		out = append(out, header{name: name, value: value})
	}

	add("X-Frame-Options", cfg.frameOptions)
	if cfg.contentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("X-XSS-Protection", cfg.xssProtection)
	add("Content-Security-Policy", cfg.contentSecurityPolicy)
	add("Referrer-Policy", cfg.referrerPolicy)
	add("Permissions-Policy", cfg.permissionsPolicy)
	add("Cross-Origin-Opener-Policy", cfg.crossOriginOpener)
	for _, name := range slices.Sorted(maps.Keys(cfg.customHeaders)) {
		add(name, cfg.customHeaders[name])
	}
	return out
}

func (cfg *config) hstsValue() string {
	if cfg.hstsMaxAge <= 0 {
		return ""
	}
	v := fmt.Sprintf("max-age=%d", cfg.hstsMaxAge)
	if cfg.hstsIncludeSubdomains {
		v += "; includeSubDomains"
	}
	if cfg.hstsPreload {
		v += "; preload"
	}
	return v
}
