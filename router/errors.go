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

import "errors"

// Registration errors. Register wraps them with the offending method and
// pattern; test with errors.Is.
var (
	// ErrInvalidPattern indicates that a pattern does not start with '/' or
	// contains ':' or '*' inside a segment.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrEmptyParamName indicates a ':' or '*' segment without a name.
	ErrEmptyParamName = errors.New("empty parameter name")

	// ErrDuplicateParamName indicates that a pattern uses the same parameter name twice.
	ErrDuplicateParamName = errors.New("duplicate parameter name in pattern")

	// ErrWildcardNotLast indicates a wildcard segment followed by more path.
	ErrWildcardNotLast = errors.New("wildcard must be the last segment")

	// ErrParamConflict indicates two different parameter names at the same tree position.
	ErrParamConflict = errors.New("conflicting parameter name")

	// ErrWildcardConflict indicates two different wildcard names at the same tree position.
	ErrWildcardConflict = errors.New("conflicting wildcard name")

	// ErrDuplicateRoute indicates that the method and pattern are already registered.
	ErrDuplicateRoute = errors.New("route already registered")

	// ErrRouterFrozen indicates a registration attempt after the router froze.
	ErrRouterFrozen = errors.New("router is frozen")

	// ErrNilHandler indicates a nil handler or middleware.
	ErrNilHandler = errors.New("handler must not be nil")

	// ErrInvalidMethod indicates an empty or malformed HTTP method.
	ErrInvalidMethod = errors.New("invalid HTTP method")

	// ErrDuplicateRouteName indicates that a route name is already taken.
	ErrDuplicateRouteName = errors.New("duplicate route name")
)

// Configuration errors returned by New.
var (
	// ErrBloomFalsePositiveRateInvalid indicates a false positive rate outside (0, 1).
	ErrBloomFalsePositiveRateInvalid = errors.New("bloom false positive rate must be in (0, 1)")

	// ErrBloomHashFunctionsInvalid indicates a hash function count outside [0, 16].
	ErrBloomHashFunctionsInvalid = errors.New("bloom hash functions must be between 0 and 16")

	// ErrTrailingSlashPolicyInvalid indicates an unknown trailing slash policy.
	ErrTrailingSlashPolicyInvalid = errors.New("unknown trailing slash policy")

	// ErrPoolWarmupInvalid indicates a negative pool warmup count.
	ErrPoolWarmupInvalid = errors.New("pool warmup must not be negative")
)

// Context errors.
var (
	// ErrContextResponseNil indicates a response helper called on a context
	// with no response writer attached.
	ErrContextResponseNil = errors.New("context response is nil")

	// ErrResponseWriterNotHijacker indicates that the ResponseWriter does not implement http.Hijacker.
	ErrResponseWriterNotHijacker = errors.New("responseWriter does not implement http.Hijacker")
)

// Reverse routing errors.
var (
	// ErrRouteNotFound indicates that the specified route could not be found.
	ErrRouteNotFound = errors.New("route not found")

	// ErrMissingRouteParameter indicates that a required parameter for the route is missing.
	ErrMissingRouteParameter = errors.New("missing required parameter")
)
