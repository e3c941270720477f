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

package requestid

// Option defines functional options for requestid middleware configuration.
type Option func(*config)

// WithHeader sets the header name for the request ID.
// Default: "X-Request-ID"
//
// Example:
//
//	requestid.New(requestid.WithHeader("X-Trace-ID"))
func WithHeader(headerName string) Option {
	return func(cfg *config) {
		cfg.headerName = headerName
	}
}

// WithULID generates ULIDs (26 characters, Crockford base32) instead of
// UUID v7 strings.
//
// Example:
//
//	requestid.New(requestid.WithULID())
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = generateULID
	}
}

// WithGenerator sets a custom function to generate request IDs.
// The generator function should return a unique string for each call.
//
// By default, UUID v7 is used (time-ordered, RFC 9562 compliant).
//
// Example:
//
//	requestid.New(requestid.WithGenerator(func() string {
//	    return uuid.NewString()
//	}))
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		if generator != nil {
			cfg.generator = generator
		}
	}
}

// WithAllowClientID controls whether to accept request IDs from clients.
// When true, a well-formed ID in the request header is reused.
// When false, always generate a new request ID regardless of client input.
// Default: true
//
// Example:
//
//	requestid.New(requestid.WithAllowClientID(false))
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}
