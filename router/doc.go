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

// Package router provides an HTTP request router built on a compressed
// radix tree.
//
// A Router is configured in two phases. During registration, routes,
// groups and middleware are added. The first Dispatch or ServeHTTP call
// (or an explicit Freeze) compiles the router: every middleware chain is
// composed, each method's static routes are placed in an exact-path table
// guarded by a bloom filter, and the context pool is sized. After that the
// router is read-only and safe for any number of concurrent requests.
//
// # Key Features
//
//   - Static, parameter (:name) and wildcard (*name) segments
//   - Literal > parameter > wildcard priority with backtracking
//   - Bloom filter short-circuit for unknown paths
//   - Pooled request contexts with reused parameter storage
//   - Global, group and route middleware composed once at freeze
//   - 404 and 405 detection with RFC 9457 problem responses
//   - Named routes, reverse routing and route introspection
//
// # Quick Start
//
//	package main
//
//	import (
//	    "net/http"
//
//	    "rivaas.dev/routecore/router"
//	)
//
//	func main() {
//	    r := router.MustNew()
//
//	    r.GET("/", func(c *router.Context) {
//	        c.String(http.StatusOK, "Hello")
//	    })
//
//	    r.GET("/users/:id", func(c *router.Context) {
//	        c.JSON(http.StatusOK, map[string]string{"user_id": c.ParamValue("id")})
//	    })
//
//	    http.ListenAndServe(":8080", r)
//	}
//
// # Patterns
//
// A pattern starts with '/'. A segment that starts with ':' captures one
// non-empty path segment; a final segment that starts with '*' captures
// the non-empty rest of the path, slashes included:
//
//	/users/:id              /users/42           id=42
//	/files/*path            /files/a/b/c.txt    path=a/b/c.txt
//	/users/new              wins over /users/:id for /users/new
//
// Two routes may not declare different parameter names at the same
// position; Register returns ErrParamConflict.
//
// # Middleware
//
// Middleware and handlers share the HandlerFunc type. A middleware calls
// c.Next() to run the rest of the chain; returning without calling it ends
// the request:
//
//	func Auth() router.HandlerFunc {
//	    return func(c *router.Context) {
//	        if c.Request.Header.Get("Authorization") == "" {
//	            c.Status(http.StatusUnauthorized)
//	            return
//	        }
//	        c.Next()
//	    }
//	}
//
// Panics propagate to the caller unless a recovery middleware is installed
// first in the global chain (see package middleware/recovery). ServeHTTP
// returns the context to the pool either way.
//
// # Dispatch Without HTTP
//
// Dispatch resolves a method and path without a request. The returned
// context must be released:
//
//	c, res := r.Dispatch(http.MethodGet, "/users/42")
//	defer r.Release(c)
//	if res == router.Matched {
//	    id, _ := c.Param("id")
//	    _ = id
//	}
package router
