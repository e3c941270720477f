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

// Package requestid provides middleware for generating and tracking request IDs
// for distributed tracing and correlation.
//
// Each request gets an ID that is stored in the request context and echoed
// in the response header, so clients and downstream services can correlate
// requests.
//
// # Basic Usage
//
//	import "rivaas.dev/routecore/router/middleware/requestid"
//
//	r := router.MustNew()
//	r.Use(requestid.New())
//
// # Request ID Generation
//
//   - X-Request-ID header: reused if present, at most 128 bytes of visible ASCII
//   - Otherwise a UUID v7 (time-ordered) from github.com/google/uuid
//
// # Accessing Request ID
//
//	func handler(c *router.Context) {
//	    id := requestid.Get(c)
//	}
//
// Outside a handler, FromContext reads the ID from any context derived from
// the request.
package requestid
