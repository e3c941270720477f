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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"

	"rivaas.dev/routecore/errors"
)

// HandlerFunc defines the handler function signature for route handlers and middleware.
//
// Example middleware:
//
//	func Timing() router.HandlerFunc {
//	    return func(c *router.Context) {
//	        start := time.Now()
//	        c.Next()
//	        slog.Info("request", "route", c.RoutePattern(), "duration", time.Since(start))
//	    }
//	}
type HandlerFunc func(*Context)

// Param is one captured path parameter.
type Param struct {
	Key   string
	Value string
}

// DispatchResult is the routing outcome of a Dispatch call.
type DispatchResult uint8

const (
	// Matched means a route was found; the context carries its chain and parameters.
	Matched DispatchResult = iota + 1

	// NotFound means no method has a route for the path.
	NotFound

	// MethodNotAllowed means the path routes under other methods only; see
	// Context.AllowedMethods.
	MethodNotAllowed
)

// String returns the result name.
func (d DispatchResult) String() string {
	switch d {
	case Matched:
		return "matched"
	case NotFound:
		return "not_found"
	case MethodNotAllowed:
		return "method_not_allowed"
	default:
		return "unresolved"
	}
}

// Context carries the routing result and request state through the
// middleware chain. Contexts are pooled: a Context is valid from Dispatch
// (or the start of ServeHTTP) until it is released, and must not be kept
// or used by another goroutine after that.
type Context struct {
	// Request is the HTTP request. Nil for contexts obtained from Dispatch
	// until Attach is called.
	Request *http.Request

	// Response writes the HTTP response. It tracks status and size.
	Response http.ResponseWriter

	rw       responseWriter
	handlers []HandlerFunc // composed chain for this request
	index    int           // next link to run

	method string
	path   string
	params []Param // capacity fixed at freeze to the router's max param count

	route   *Route
	result  DispatchResult
	allowed []string

	router *Router
	inUse  atomic.Bool
}

// Next runs exactly the next link of the chain. A middleware that returns
// without calling Next ends the request there. Calling Next after the
// terminal handler is a no-op.
func (c *Context) Next() {
	if c.index < len(c.handlers) {
		h := c.handlers[c.index]
		c.index++
		h(c)
	}
}

// Param returns the value captured for name.
//
// Example:
//
//	r.GET("/users/:id", func(c *router.Context) {
//	    id, _ := c.Param("id")
//	    c.String(http.StatusOK, "user %s", id)
//	})
func (c *Context) Param(name string) (string, bool) {
	for i := range c.params {
		if c.params[i].Key == name {
			return c.params[i].Value, true
		}
	}
	return "", false
}

// ParamValue returns the value captured for name, or "".
func (c *Context) ParamValue(name string) string {
	v, _ := c.Param(name)
	return v
}

// Params returns the captured parameters in declaration order. The slice
// is owned by the context and must not be modified or retained.
func (c *Context) Params() []Param {
	return c.params
}

// Method returns the request method the context was dispatched with.
func (c *Context) Method() string { return c.method }

// Path returns the request path the context was dispatched with.
func (c *Context) Path() string { return c.path }

// Result returns the routing outcome.
func (c *Context) Result() DispatchResult { return c.result }

// Route returns the matched route, or nil.
func (c *Context) Route() *Route { return c.route }

// RoutePattern returns the matched route pattern, e.g. "/users/:id", or ""
// when nothing matched.
func (c *Context) RoutePattern() string {
	if c.route == nil {
		return ""
	}
	return c.route.pattern
}

// RouteName returns the matched route name, or "".
func (c *Context) RouteName() string {
	if c.route == nil {
		return ""
	}
	return c.route.name
}

// AllowedMethods returns the methods registered for the path when the
// result is MethodNotAllowed, sorted.
func (c *Context) AllowedMethods() []string {
	return c.allowed
}

// Handler returns the matched route's terminal handler, or nil.
func (c *Context) Handler() HandlerFunc {
	if c.route == nil {
		return nil
	}
	return c.route.handler
}

// Router returns the router that produced the context.
func (c *Context) Router() *Router { return c.router }

// Attach binds a request and response writer to a context obtained from
// Dispatch so the chain can write a response.
func (c *Context) Attach(w http.ResponseWriter, req *http.Request) {
	c.Request = req
	c.rw = responseWriter{ResponseWriter: w}
	c.Response = &c.rw
}

// RequestContext returns the request's context.Context unchanged, so
// deadlines and cancellation set by the transport reach the handler. It
// returns context.Background when no request is attached.
func (c *Context) RequestContext() context.Context {
	if c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}

// Header returns the response header map.
func (c *Context) Header() http.Header {
	if c.Response == nil {
		return http.Header{}
	}
	return c.Response.Header()
}

// Status writes the status code and headers.
func (c *Context) Status(code int) {
	if c.Response != nil {
		c.Response.WriteHeader(code)
	}
}

// String writes a text/plain response.
func (c *Context) String(code int, format string, values ...any) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}
	c.Response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.Response.WriteHeader(code)
	if len(values) == 0 {
		_, err := c.Response.Write([]byte(format))
		return err
	}
	_, err := fmt.Fprintf(c.Response, format, values...)
	return err
}

// JSON writes obj as an application/json response.
func (c *Context) JSON(code int, obj any) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}
	c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.Response.WriteHeader(code)
	return json.NewEncoder(c.Response).Encode(obj)
}

// Problem writes err through the router's problem formatter (RFC 9457 by
// default). The status comes from err; see errors.ErrorType.
func (c *Context) Problem(err error) error {
	if c.Response == nil {
		return ErrContextResponseNil
	}
	var f errors.Formatter
	if c.router != nil {
		f = c.router.formatter
	}
	return errors.Write(c.Response, c.Request, f, err)
}

// Written reports whether the response header has been written.
func (c *Context) Written() bool {
	return c.Response != nil && c.rw.written
}

// StatusCode returns the response status, 200 if none was written yet.
func (c *Context) StatusCode() int {
	return c.rw.StatusCode()
}

// Size returns the number of body bytes written.
func (c *Context) Size() int64 {
	return c.rw.size
}

// unescapeParams decodes percent-encoded parameter values in place.
// Values that fail to decode are left as captured.
func (c *Context) unescapeParams() {
	for i := range c.params {
		v := c.params[i].Value
		if strings.IndexByte(v, '%') < 0 {
			continue
		}
		if u, err := url.PathUnescape(v); err == nil {
			c.params[i].Value = u
		}
	}
}

// matched records a successful match.
func (c *Context) matched(rt *Route) {
	c.route = rt
	c.handlers = rt.chain
	c.result = Matched
}

// reset clears per-request state. The params backing array and the allowed
// slice are kept for reuse.
func (c *Context) reset() {
	c.Request = nil
	c.Response = nil
	c.rw = responseWriter{}
	c.handlers = nil
	c.index = 0
	c.method = ""
	c.path = ""
	clear(c.params[:cap(c.params)])
	c.params = c.params[:0]
	c.route = nil
	c.result = 0
	c.allowed = c.allowed[:0]
}
