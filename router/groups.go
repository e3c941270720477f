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
	"net/http"
)

// Group is a set of routes sharing a path prefix, middleware and a name
// prefix. Groups nest: a child's middleware runs after its parent's.
//
// Example:
//
//	api := r.Group("/api/v1", Auth())
//	users := api.Group("/users", RateLimit())
//	users.GET("/:id", getUser) // /api/v1/users/:id runs Auth, RateLimit, getUser
type Group struct {
	router     *Router
	parent     *Group
	prefix     string // full prefix, parents included
	middleware []HandlerFunc
	namePrefix string
}

// Group creates a new route group with the specified prefix and optional
// middleware. Panics if any middleware is nil.
func (r *Router) Group(prefix string, middleware ...HandlerFunc) *Group {
	mustNotBeNil("Group", middleware)
	return &Group{
		router:     r,
		prefix:     prefix,
		middleware: middleware,
	}
}

// Group creates a nested group whose prefix is the parent's prefix plus
// prefix. The parent's middleware and name prefix are inherited. Panics if
// any middleware is nil.
func (g *Group) Group(prefix string, middleware ...HandlerFunc) *Group {
	mustNotBeNil("Group", middleware)
	return &Group{
		router:     g.router,
		parent:     g,
		prefix:     g.prefix + prefix,
		middleware: middleware,
		namePrefix: g.namePrefix,
	}
}

// Use adds middleware to the group. It applies to every route of the group
// and its subgroups, including routes registered before the call, since
// chains are composed at freeze. Panics after freeze or if any middleware
// is nil.
func (g *Group) Use(middleware ...HandlerFunc) {
	mustNotBeNil("Group.Use", middleware)
	g.router.mu.Lock()
	defer g.router.mu.Unlock()
	if g.router.sealed {
		panic("router: Group.Use called after freeze")
	}
	g.middleware = append(g.middleware, middleware...)
}

func mustNotBeNil(op string, middleware []HandlerFunc) {
	if hasNil(middleware) {
		panic(fmt.Sprintf("router: %s: %v", op, ErrNilHandler))
	}
}

// SetNamePrefix appends prefix to the group's name prefix.
//
// Example:
//
//	api := r.Group("/api").SetNamePrefix("api.")
//	api.GET("/users", list).SetName("users.list") // name: api.users.list
func (g *Group) SetNamePrefix(prefix string) *Group {
	g.namePrefix += prefix
	return g
}

// Prefix returns the group's full path prefix.
func (g *Group) Prefix() string { return g.prefix }

// Register adds a route under the group's prefix. See Router.Register.
func (g *Group) Register(method, pattern string, handler HandlerFunc, middleware ...HandlerFunc) (*Route, error) {
	return g.router.register(g, method, g.prefix+pattern, handler, middleware)
}

// Handle is Register for the conventional handlers-last form: every
// function but the last is route middleware. Panics on registration error.
func (g *Group) Handle(method, pattern string, handlers ...HandlerFunc) *Route {
	return g.router.mustRegister(g, method, g.prefix+pattern, handlers)
}

// GET adds a GET route to the group.
func (g *Group) GET(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodGet, pattern, handlers...)
}

// POST adds a POST route to the group.
func (g *Group) POST(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodPost, pattern, handlers...)
}

// PUT adds a PUT route to the group.
func (g *Group) PUT(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodPut, pattern, handlers...)
}

// PATCH adds a PATCH route to the group.
func (g *Group) PATCH(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodPatch, pattern, handlers...)
}

// DELETE adds a DELETE route to the group.
func (g *Group) DELETE(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodDelete, pattern, handlers...)
}

// HEAD adds a HEAD route to the group.
func (g *Group) HEAD(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodHead, pattern, handlers...)
}

// OPTIONS adds an OPTIONS route to the group.
func (g *Group) OPTIONS(pattern string, handlers ...HandlerFunc) *Route {
	return g.Handle(http.MethodOptions, pattern, handlers...)
}
