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
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"

	"rivaas.dev/routecore/errors"
	"rivaas.dev/routecore/router/compiler"
)

// noopLogger is the logger used when none is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Router matches requests to registered routes and runs their middleware
// chains.
//
// A router has two phases. While registering, routes, middleware and
// groups are added; registration is serialized by a mutex. Freeze (called
// explicitly or by the first Dispatch/ServeHTTP) composes every chain and
// compiles per-method tables. From then on the router is read-only and
// dispatch takes no locks.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/users/:id", func(c *router.Context) {
//	    c.JSON(http.StatusOK, map[string]string{"id": c.ParamValue("id")})
//	})
//	http.ListenAndServe(":8080", r)
type Router struct {
	// Registration state, guarded by mu.
	mu         sync.Mutex
	sealed     bool // set at the start of Freeze; rejects registration
	trees      map[string]*node
	routes     []*Route
	names      map[string]*Route
	middleware []HandlerFunc
	noRoute    HandlerFunc
	noMethod   HandlerFunc

	// Compiled at freeze, read-only afterwards.
	freezeOnce    sync.Once
	frozen        atomic.Bool
	tables        map[string]*methodTable
	methods       []string // sorted, for the 405 Allow scan
	notFoundChain []HandlerFunc
	notAllowChain []HandlerFunc
	maxParams     int
	routeSnapshot []RouteInfo
	pool          *contextPool

	// Configuration
	bloomFPRate    float64
	bloomHashFuncs int
	trailingSlash  TrailingSlashPolicy
	logger         *slog.Logger
	diagnostics    DiagnosticHandler
	poolWarmup     int
	formatter      errors.Formatter
	unescapeValues bool
}

// methodTable is the compiled route table of one HTTP method.
type methodTable struct {
	root   *node
	static *compiler.StaticTable[*Route]
}

// New creates a router. Configuration is validated immediately.
//
// Example:
//
//	r, err := router.New(
//	    router.WithTrailingSlash(router.TrailingSlashRedirect),
//	    router.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatalf("Invalid router configuration: %v", err)
//	}
func New(opts ...Option) (*Router, error) {
	r := &Router{
		trees:          make(map[string]*node),
		names:          make(map[string]*Route),
		bloomFPRate:    defaultBloomFPRate,
		bloomHashFuncs: defaultBloomHashFunctions,
		trailingSlash:  TrailingSlashStrict,
		logger:         noopLogger,
		formatter:      errors.NewRFC9457(""),
		unescapeValues: true,
	}
	r.pool = newContextPool(r)

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("router configuration validation failed: %w", err)
	}

	return r, nil
}

// MustNew is New that panics on invalid configuration.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router.MustNew: %v", err))
	}
	return r
}

// emit sends a diagnostic event if a handler is configured.
func (r *Router) emit(kind DiagnosticKind, message string, fields map[string]any) {
	if r.diagnostics != nil {
		r.diagnostics.OnDiagnostic(DiagnosticEvent{
			Kind:    kind,
			Message: message,
			Fields:  fields,
		})
	}
}

// Register adds a route. pattern starts with '/', uses :name for a single
// segment and *name for the rest of the path (last segment only). The
// middleware runs, in order, after global and group middleware and before
// handler.
//
// A failed registration leaves the router unchanged. Errors wrap
// ErrInvalidPattern, ErrEmptyParamName, ErrDuplicateParamName,
// ErrWildcardNotLast, ErrParamConflict, ErrWildcardConflict,
// ErrDuplicateRoute, ErrRouterFrozen, ErrNilHandler or ErrInvalidMethod.
func (r *Router) Register(method, pattern string, handler HandlerFunc, middleware ...HandlerFunc) error {
	_, err := r.register(nil, method, pattern, handler, middleware)
	return err
}

// Handle registers a route in the handlers-last form: every function but
// the last is route middleware. It panics on registration error, so
// mistakes surface at startup.
func (r *Router) Handle(method, pattern string, handlers ...HandlerFunc) *Route {
	return r.mustRegister(nil, method, pattern, handlers)
}

// GET adds a GET route.
func (r *Router) GET(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodGet, pattern, handlers...)
}

// POST adds a POST route.
func (r *Router) POST(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodPost, pattern, handlers...)
}

// PUT adds a PUT route.
func (r *Router) PUT(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodPut, pattern, handlers...)
}

// PATCH adds a PATCH route.
func (r *Router) PATCH(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodPatch, pattern, handlers...)
}

// DELETE adds a DELETE route.
func (r *Router) DELETE(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodDelete, pattern, handlers...)
}

// HEAD adds a HEAD route.
func (r *Router) HEAD(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodHead, pattern, handlers...)
}

// OPTIONS adds an OPTIONS route.
func (r *Router) OPTIONS(pattern string, handlers ...HandlerFunc) *Route {
	return r.Handle(http.MethodOptions, pattern, handlers...)
}

func (r *Router) mustRegister(g *Group, method, pattern string, handlers []HandlerFunc) *Route {
	if len(handlers) == 0 {
		panic(fmt.Sprintf("router: %s %s: %v", method, pattern, ErrNilHandler))
	}
	last := len(handlers) - 1
	rt, err := r.register(g, method, pattern, handlers[last], handlers[:last])
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}
	return rt
}

func (r *Router) register(g *Group, method, pattern string, handler HandlerFunc, middleware []HandlerFunc) (*Route, error) {
	if !validMethod(method) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	if handler == nil || hasNil(middleware) {
		return nil, fmt.Errorf("%s %s: %w", method, pattern, ErrNilHandler)
	}
	if r.trailingSlash != TrailingSlashStrict {
		pattern = trimTrailingSlash(pattern)
	}

	parts, names, err := parsePattern(pattern)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, pattern, err)
	}

	rt, err := r.insert(g, method, pattern, parts, names, handler, middleware)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("route registered", "method", method, "pattern", pattern, "params", len(names))
	r.emit(DiagRouteRegistered, "route registered", map[string]any{
		"method":  method,
		"pattern": pattern,
	})

	return rt, nil
}

// insert adds the route to the method's tree under r.mu.
func (r *Router) insert(g *Group, method, pattern string, parts []patternPart, names []string, handler HandlerFunc, middleware []HandlerFunc) (*Route, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return nil, fmt.Errorf("%s %s: %w", method, pattern, ErrRouterFrozen)
	}

	root := r.trees[method]
	if root == nil {
		root = &node{}
	}
	if err := root.check(parts); err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, pattern, err)
	}
	r.trees[method] = root

	rt := &Route{
		router:     r,
		group:      g,
		method:     method,
		pattern:    pattern,
		parts:      parts,
		paramNames: names,
		handler:    handler,
		middleware: slices.Clone(middleware),
	}
	root.insert(parts, rt)
	r.routes = append(r.routes, rt)
	return rt, nil
}

// validMethod reports whether m is a non-empty RFC 9110 token.
func validMethod(m string) bool {
	if m == "" {
		return false
	}
	for i := 0; i < len(m); i++ {
		c := m[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '!', c == '#', c == '$', c == '%', c == '&', c == '\'', c == '*',
			c == '+', c == '-', c == '.', c == '^', c == '_', c == '`', c == '|', c == '~':
		default:
			return false
		}
	}
	return true
}

func hasNil(handlers []HandlerFunc) bool {
	for _, h := range handlers {
		if h == nil {
			return true
		}
	}
	return false
}

// trimTrailingSlash removes one trailing '/' from every path but the root.
func trimTrailingSlash(p string) string {
	if len(p) > 1 && p[len(p)-1] == '/' {
		return p[:len(p)-1]
	}
	return p
}

// Use appends global middleware. It runs before group and route middleware
// for every route, and for the 404/405 fallback chains. Panics after
// freeze.
func (r *Router) Use(middleware ...HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic("router: Use called after freeze")
	}
	if hasNil(middleware) {
		panic(fmt.Sprintf("router: Use: %v", ErrNilHandler))
	}
	r.middleware = append(r.middleware, middleware...)
}

// NoRoute sets the handler run, after global middleware, when no route
// matches. Nil restores the default RFC 9457 404 response. Panics after
// freeze.
//
// Example:
//
//	r.NoRoute(func(c *router.Context) {
//	    c.JSON(http.StatusNotFound, map[string]string{"error": "route not found"})
//	})
func (r *Router) NoRoute(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic("router: NoRoute called after freeze")
	}
	r.noRoute = handler
}

// NoMethod sets the handler run when the path exists under other methods
// only. The Allow header is already set when it runs. Nil restores the
// default RFC 9457 405 response. Panics after freeze.
func (r *Router) NoMethod(handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		panic("router: NoMethod called after freeze")
	}
	r.noMethod = handler
}

// nameRoute registers rt under name.
func (r *Router) nameRoute(rt *Route, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrRouterFrozen
	}
	if prev, ok := r.names[name]; ok && prev != rt {
		return fmt.Errorf("%w: %q is used by %s %s", ErrDuplicateRouteName, name, prev.method, prev.pattern)
	}
	if rt.name != "" {
		delete(r.names, rt.name)
	}
	rt.name = name
	r.names[name] = rt
	return nil
}

// URLFor builds the path of the route named name, filling parameters from
// params and appending query when non-empty.
//
// Example:
//
//	r.GET("/users/:id", getUser).SetName("users.get")
//	u, _ := r.URLFor("users.get", map[string]string{"id": "42"}, nil) // "/users/42"
func (r *Router) URLFor(name string, params map[string]string, query url.Values) (string, error) {
	var rt *Route
	if r.frozen.Load() {
		rt = r.names[name]
	} else {
		r.mu.Lock()
		rt = r.names[name]
		r.mu.Unlock()
	}
	if rt == nil {
		return "", fmt.Errorf("%w: %s", ErrRouteNotFound, name)
	}
	return rt.buildURL(params, query)
}

// MustURLFor is URLFor that panics on error.
func (r *Router) MustURLFor(name string, params map[string]string, query url.Values) string {
	u, err := r.URLFor(name, params, query)
	if err != nil {
		panic(fmt.Sprintf("MustURLFor failed: %v", err))
	}
	return u
}

// Routes returns every registered route sorted by method, then path.
func (r *Router) Routes() []RouteInfo {
	if r.frozen.Load() {
		return slices.Clone(r.routeSnapshot)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	infos := make([]RouteInfo, 0, len(r.routes))
	for _, rt := range r.routes {
		infos = append(infos, rt.info(r.composeRoute(rt)))
	}
	sortRouteInfos(infos)
	return infos
}

// Frozen reports whether the router has been frozen.
func (r *Router) Frozen() bool {
	return r.frozen.Load()
}

// Freeze ends registration and compiles the router:
//   - every route's middleware chain is composed
//   - each method gets a static table and bloom filter
//   - the context pool is sized to the largest parameter count
//
// Freeze runs on the first Dispatch or ServeHTTP if not called earlier. It
// is idempotent and safe to call concurrently; all callers return after
// compilation completes.
func (r *Router) Freeze() {
	r.freezeOnce.Do(r.freeze)
}

func (r *Router) freeze() {
	// Diagnostic handlers run after the lock is released so they may call
	// back into the router.
	var events []DiagnosticEvent
	defer func() {
		for _, e := range events {
			r.emit(e.Kind, e.Message, e.Fields)
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true

	builders := make(map[string]*compiler.TableBuilder[*Route], len(r.trees))
	for method := range r.trees {
		builders[method] = compiler.NewTableBuilder[*Route](r.bloomFPRate, r.bloomHashFuncs)
	}

	r.routeSnapshot = make([]RouteInfo, 0, len(r.routes))
	for _, rt := range r.routes {
		rt.chain = r.composeRoute(rt)
		r.routeSnapshot = append(r.routeSnapshot, rt.info(rt.chain))

		n := len(rt.paramNames)
		r.maxParams = max(r.maxParams, n)
		if n > highParamCount {
			r.logger.Warn("route has many parameters", "method", rt.method, "pattern", rt.pattern, "params", n)
			events = append(events, DiagnosticEvent{
				Kind:    DiagHighParamCount,
				Message: "route has many parameters",
				Fields: map[string]any{
					"method":  rt.method,
					"pattern": rt.pattern,
					"params":  n,
				},
			})
		}

		if rt.IsStatic() {
			builders[rt.method].AddStatic(rt.pattern, rt)
		} else {
			builders[rt.method].MarkDynamic()
		}
	}
	sortRouteInfos(r.routeSnapshot)

	r.tables = make(map[string]*methodTable, len(r.trees))
	r.methods = make([]string, 0, len(r.trees))
	for method, root := range r.trees {
		r.tables[method] = &methodTable{root: root, static: builders[method].Build()}
		r.methods = append(r.methods, method)
	}
	slices.Sort(r.methods)

	notFound, notAllowed := r.noRoute, r.noMethod
	if notFound == nil {
		notFound = defaultNotFound
	}
	if notAllowed == nil {
		notAllowed = defaultMethodNotAllowed
	}
	r.notFoundChain = composeChain(r.middleware, nil, nil, notFound)
	r.notAllowChain = composeChain(r.middleware, nil, nil, notAllowed)

	r.pool.paramCap = r.maxParams
	r.pool.Warmup(r.poolWarmup)

	r.frozen.Store(true)

	r.logger.Info("router frozen",
		"routes", len(r.routes),
		"methods", r.methods,
		"max_params", r.maxParams,
	)
	events = append(events, DiagnosticEvent{
		Kind:    DiagRouterFrozen,
		Message: "router frozen",
		Fields: map[string]any{
			"routes":     len(r.routes),
			"max_params": r.maxParams,
		},
	})
}

// PoolStats returns the context pool counters.
func (r *Router) PoolStats() PoolStats {
	return r.pool.Stats()
}

// defaultNotFound writes an RFC 9457 404.
func defaultNotFound(c *Context) {
	_ = c.Problem(errors.NotFound(c.path))
}

// defaultMethodNotAllowed writes an RFC 9457 405. The Allow header set by
// ServeHTTP is replaced with the same value.
func defaultMethodNotAllowed(c *Context) {
	_ = c.Problem(errors.MethodNotAllowed(c.method, c.path, c.allowed))
}
