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

// Option configures the security middleware.
type Option func(*config)

type config struct {
	frameOptions          string
	contentTypeNosniff    bool
	xssProtection         string
	hstsMaxAge            int
	hstsIncludeSubdomains bool
	hstsPreload           bool
	contentSecurityPolicy string
	referrerPolicy        string
	permissionsPolicy     string
	crossOriginOpener     string
	customHeaders         map[string]string
}

func defaultConfig() *config {
	return &config{
		frameOptions:          "DENY",
		contentTypeNosniff:    true,
		xssProtection:         "0",
		hstsMaxAge:            31536000, // 1 year
		hstsIncludeSubdomains: true,
		contentSecurityPolicy: "default-src 'self'",
		referrerPolicy:        "strict-origin-when-cross-origin",
		customHeaders:         make(map[string]string),
	}
}

// WithFrameOptions sets X-Frame-Options. Empty omits it. Default: "DENY".
func WithFrameOptions(value string) Option {
	return func(cfg *config) {
		cfg.frameOptions = value
	}
}

// WithContentTypeNosniff toggles X-Content-Type-Options: nosniff.
func WithContentTypeNosniff(enabled bool) Option {
	return func(cfg *config) {
		cfg.contentTypeNosniff = enabled
	}
}

// WithXSSProtection sets X-XSS-Protection. Default: "0", which turns off
// the legacy browser filter.
func WithXSSProtection(value string) Option {
	return func(cfg *config) {
		cfg.xssProtection = value
	}
}

// WithHSTS configures Strict-Transport-Security. A maxAge of zero
// disables it.
//
//	security.New(security.WithHSTS(63072000, true, true))
func WithHSTS(maxAge int, includeSubdomains, preload bool) Option {
	return func(cfg *config) {
		cfg.hstsMaxAge = maxAge
		cfg.hstsIncludeSubdomains = includeSubdomains
		cfg.hstsPreload = preload
	}
}

// WithContentSecurityPolicy sets Content-Security-Policy.
// Default: "default-src 'self'".
func WithContentSecurityPolicy(policy string) Option {
	return func(cfg *config) {
		cfg.contentSecurityPolicy = policy
	}
}

// WithReferrerPolicy sets Referrer-Policy.
// Default: "strict-origin-when-cross-origin".
func WithReferrerPolicy(policy string) Option {
	return func(cfg *config) {
		cfg.referrerPolicy = policy
	}
}

// WithPermissionsPolicy sets Permissions-Policy, e.g.
// "geolocation=(), camera=()".
func WithPermissionsPolicy(policy string) Option {
	return func(cfg *config) {
		cfg.permissionsPolicy = policy
	}
}

// WithCrossOriginOpenerPolicy sets Cross-Origin-Opener-Policy.
func WithCrossOriginOpenerPolicy(policy string) Option {
	return func(cfg *config) {
		cfg.crossOriginOpener = policy
	}
}

// WithCustomHeader adds an extra header to every response.
func WithCustomHeader(name, value string) Option {
	return func(cfg *config) {
		cfg.customHeaders[name] = value
	}
}
