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

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"rivaas.dev/routecore/router"
	"rivaas.dev/routecore/router/middleware"
)

// maxClientIDLength bounds client-supplied IDs accepted from the header.
const maxClientIDLength = 128

// config holds the configuration for the requestid middleware.
type config struct {
	// headerName is the name of the header to use for the request ID
	headerName string

	// generator is the function used to generate new request IDs
	generator func() string

	// allowClientID allows using request IDs provided by clients
	allowClientID bool
}

// defaultConfig returns the default configuration for requestid middleware.
func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUIDv7,
		allowClientID: true,
	}
}

// generateUUIDv7 returns a time-ordered UUID. NewV7 only fails when the
// random source does; a v4 UUID is used then.
func generateUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// generateULID returns a 26-character, lexicographically sortable ID.
func generateULID() string {
	return ulid.Make().String()
}

// New returns a middleware that adds a unique request ID to each request.
//
// The middleware will:
//  1. Check if a request ID is already present in the configured header
//  2. Use the existing ID if allowed and well-formed, or generate a new one
//  3. Set the request ID in the response header and the request context
//
// Basic usage:
//
//	r := router.MustNew()
//	r.Use(requestid.New())
//
// Custom header name:
//
//	r.Use(requestid.New(
//	    requestid.WithHeader("X-Correlation-ID"),
//	))
//
// Accessing the request ID in handlers:
//
//	r.GET("/users/:id", func(c *router.Context) {
//	    id := requestid.Get(c)
//	    // Use id for logging, tracing, etc.
//	})
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) {
		if c.Request == nil {
			c.Next()
			return
		}

		var requestID string
		if cfg.allowClientID {
			requestID = c.Request.Header.Get(cfg.headerName)
			if !validClientID(requestID) {
				requestID = ""
			}
		}
		if requestID == "" {
			requestID = cfg.generator()
		}

		c.Header().Set(cfg.headerName, requestID)

		// Store request ID in context for use by other middleware (e.g., accesslog)
		ctx := context.WithValue(c.Request.Context(), middleware.RequestIDKey, requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// validClientID accepts non-empty, bounded IDs of visible ASCII only, so
// a client cannot smuggle control characters into logs or headers.
func validClientID(id string) bool {
	if id == "" || len(id) > maxClientIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

// Get retrieves the request ID from the context.
// Returns an empty string if no request ID has been set.
//
// Example:
//
//	func handler(c *router.Context) {
//	    requestID := requestid.Get(c)
//	    slog.Info("processing request", "request_id", requestID)
//	}
func Get(c *router.Context) string {
	return FromContext(c.RequestContext())
}

// FromContext returns the request ID stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// FromRequest returns the request ID of req, or "".
func FromRequest(req *http.Request) string {
	return FromContext(req.Context())
}
