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

/*
Package middleware holds the shared types of the router middleware. Each
middleware lives in its own sub-package.

# Available Middlewares

  - recovery: Panic recovery with RFC 9457 error responses
  - requestid: Request ID generation and propagation
  - accesslog: Structured access logging with the matched route pattern
  - timeout: Request deadlines carried on the request context

# Ordering

Recovery must come first so it wraps every other link. Request IDs should
be assigned before the access log runs so log lines carry them:

	import (
	    "rivaas.dev/routecore/router"
	    "rivaas.dev/routecore/router/middleware/accesslog"
	    "rivaas.dev/routecore/router/middleware/recovery"
	    "rivaas.dev/routecore/router/middleware/requestid"
	    "rivaas.dev/routecore/router/middleware/timeout"
	)

	r := router.MustNew()
	r.Use(recovery.New(recovery.WithLogger(logger)))
	r.Use(requestid.New())
	r.Use(accesslog.New(accesslog.WithLogger(logger)))
	r.Use(timeout.New(timeout.WithDuration(5 * time.Second)))

A middleware that decides to answer the request itself returns without
calling c.Next(); nothing after it in the chain runs.
*/
package middleware
