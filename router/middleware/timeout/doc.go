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

// Package timeout provides middleware for putting a deadline on request
// processing.
//
// The middleware derives a context with a deadline from the request
// context and hands it to the rest of the chain. Handlers see it through
// c.RequestContext() and pass it on to database calls, outbound requests
// and anything else that blocks.
//
// # Basic Usage
//
//	r := router.MustNew()
//	r.Use(timeout.New(
//	    timeout.WithDuration(30 * time.Second),
//	))
//
// # Timeout Behavior
//
// The chain runs on the request goroutine; nothing is interrupted. When the
// chain returns after the deadline without writing a response, a 503
// problem response is sent. WithHandler replaces it.
//
// # Handler Implementation
//
//	func handler(c *router.Context) {
//	    ctx := c.RequestContext()
//	    select {
//	    case <-ctx.Done():
//	        return // the middleware answers
//	    case result := <-longRunningOperation(ctx):
//	        c.JSON(http.StatusOK, result)
//	    }
//	}
package timeout
