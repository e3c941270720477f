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

package router

import (
	"fmt"
	"log/slog"
	"strings"

	"rivaas.dev/routecore/errors"
	"rivaas.dev/routecore/router/compiler"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// TrailingSlashPolicy decides how a trailing '/' on a request path is
// treated. The policy is applied once, before matching; the tree never
// sees it.
type TrailingSlashPolicy uint8

const (
	// TrailingSlashStrict treats /users and /users/ as different paths.
	TrailingSlashStrict TrailingSlashPolicy = iota

	// TrailingSlashRemove strips one trailing slash before matching and
	// from registered patterns. The client is not told.
	TrailingSlashRemove

	// TrailingSlashRedirect answers 308 Permanent Redirect to the path
	// without the trailing slash when that path routes. Dispatch, which has
	// no client to redirect, behaves as TrailingSlashRemove.
	TrailingSlashRedirect

	trailingSlashPolicies // sentinel for validation
)

var trailingSlashNames = [...]string{
	TrailingSlashStrict:   "strict",
	TrailingSlashRemove:   "remove",
	TrailingSlashRedirect: "redirect",
}

// String returns the policy name as accepted by ParseTrailingSlashPolicy.
func (p TrailingSlashPolicy) String() string {
	if p < trailingSlashPolicies {
		return trailingSlashNames[p]
	}
	return fmt.Sprintf("TrailingSlashPolicy(%d)", uint8(p))
}

// ParseTrailingSlashPolicy parses "strict", "remove" or "redirect"
// (case-insensitive).
func ParseTrailingSlashPolicy(s string) (TrailingSlashPolicy, error) {
	for i, name := range trailingSlashNames {
		if strings.EqualFold(s, name) {
			return TrailingSlashPolicy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrTrailingSlashPolicyInvalid, s)
}

const (
	// defaultBloomHashFunctions selects k from the filter size.
	defaultBloomHashFunctions = 0

	// maxBloomHashFunctions bounds WithBloomHashFunctions.
	maxBloomHashFunctions = 16
)

// WithBloomFalsePositiveRate sets the target false positive rate of every
// method's bloom filter. The filter size is derived from it and the number
// of static routes at freeze time.
//
// Default: 0.01
// Must be in (0, 1) or New fails with ErrBloomFalsePositiveRateInvalid.
//
// Example:
//
//	r := router.MustNew(router.WithBloomFalsePositiveRate(0.001))
func WithBloomFalsePositiveRate(p float64) Option {
	return func(r *Router) {
		r.bloomFPRate = p
	}
}

// WithBloomHashFunctions overrides the number of bloom filter hash functions.
// Zero derives k from the filter size.
//
// Default: 0 (derived)
// Range: 0-16
func WithBloomHashFunctions(k int) Option {
	return func(r *Router) {
		r.bloomHashFuncs = k
	}
}

// WithTrailingSlash sets the trailing slash policy.
//
// Default: TrailingSlashStrict
//
// Example:
//
//	r := router.MustNew(router.WithTrailingSlash(router.TrailingSlashRedirect))
func WithTrailingSlash(policy TrailingSlashPolicy) Option {
	return func(r *Router) {
		r.trailingSlash = policy
	}
}

// WithLogger sets the logger used for registration, freeze and runtime
// anomalies. A nil logger restores the no-op default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger == nil {
			logger = noopLogger
		}
		r.logger = logger
	}
}

// WithDiagnostics sets a diagnostic handler for the router.
//
// Example with OpenTelemetry:
//
//	handler := router.DiagnosticHandlerFunc(func(e router.DiagnosticEvent) {
//	    span := trace.SpanFromContext(ctx)
//	    if span.IsRecording() {
//	        span.AddEvent(e.Message, trace.WithAttributes(
//	            attribute.String("diagnostic.kind", string(e.Kind)),
//	        ))
//	    }
//	})
func WithDiagnostics(handler DiagnosticHandler) Option {
	return func(r *Router) {
		r.diagnostics = handler
	}
}

// WithPoolWarmup pre-allocates n contexts when the router freezes so the
// first burst of requests does not pay for allocation.
//
// Default: 0
func WithPoolWarmup(n int) Option {
	return func(r *Router) {
		r.poolWarmup = n
	}
}

// WithProblemFormatter sets the formatter used for the default 404 and 405
// responses and by Context.Problem.
//
// Default: errors.NewRFC9457("")
func WithProblemFormatter(f errors.Formatter) Option {
	return func(r *Router) {
		if f != nil {
			r.formatter = f
		}
	}
}

// WithUnescapePathValues controls matching of percent-encoded paths in
// ServeHTTP. When enabled and the request carries an encoded path
// (URL.RawPath), matching runs on the encoded form so %2F never splits a
// segment, and captured parameter values are decoded afterwards.
//
// Default: true
func WithUnescapePathValues(enabled bool) Option {
	return func(r *Router) {
		r.unescapeValues = enabled
	}
}

// WithoutUnescapePathValues matches on the decoded URL.Path and leaves
// parameter values as they appear there.
func WithoutUnescapePathValues() Option {
	return WithUnescapePathValues(false)
}

// validate checks the router configuration. Routes are validated at
// registration time.
func (r *Router) validate() error {
	if r.bloomFPRate <= 0 || r.bloomFPRate >= 1 {
		return fmt.Errorf("%w: got %v", ErrBloomFalsePositiveRateInvalid, r.bloomFPRate)
	}
	if r.bloomHashFuncs < 0 || r.bloomHashFuncs > maxBloomHashFunctions {
		return fmt.Errorf("%w: got %d", ErrBloomHashFunctionsInvalid, r.bloomHashFuncs)
	}
	if r.trailingSlash >= trailingSlashPolicies {
		return fmt.Errorf("%w: %s", ErrTrailingSlashPolicyInvalid, r.trailingSlash)
	}
	if r.poolWarmup < 0 {
		return fmt.Errorf("%w: got %d", ErrPoolWarmupInvalid, r.poolWarmup)
	}
	return nil
}

// defaultBloomFPRate mirrors the compiler default so Router zero values and
// compiled tables agree.
const defaultBloomFPRate = compiler.DefaultFalsePositiveRate
