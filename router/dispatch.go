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

// Dispatch resolves method and path to a route.
//
// The returned context is never nil and must be passed to Release once the
// response is complete, whatever the result. On Matched it carries the
// route's composed chain and captured parameters; on NotFound and
// MethodNotAllowed it carries the fallback chain (global middleware plus
// the NoRoute/NoMethod handler), so running c.Next() produces the error
// response with observability middleware still in place.
//
// path is matched byte for byte; callers that start from a raw request URI
// decode it first. Dispatch freezes the router if needed.
//
// Example:
//
//	c, res := r.Dispatch(http.MethodGet, "/users/42")
//	defer r.Release(c)
//	if res == router.Matched {
//	    id, _ := c.Param("id")
//	}
func (r *Router) Dispatch(method, path string) (*Context, DispatchResult) {
	if !r.frozen.Load() {
		r.Freeze()
	}

	c := r.pool.Acquire()
	r.resolve(c, method, path)
	return c, c.result
}

// Release returns c to its router's pool. Releasing a context twice is
// ignored and reported as a DiagDoubleRelease diagnostic.
func (r *Router) Release(c *Context) {
	if c == nil {
		return
	}
	owner := c.router
	if owner == nil {
		owner = r
	}
	if !owner.pool.Release(c) {
		owner.logger.Warn("context released twice")
		owner.emit(DiagDoubleRelease, "context released twice", nil)
	}
}

// resolve fills c with the routing outcome for method and path.
//
// Order of checks:
//  1. trailing slash policy
//  2. the method's table: bloom short-circuit, static map, tree walk
//  3. on a miss, every other method in sorted order, to tell 405 from 404
func (r *Router) resolve(c *Context, method, path string) {
	c.method = method
	c.path = path

	if r.trailingSlash != TrailingSlashStrict {
		path = trimTrailingSlash(path)
	}

	if t := r.tables[method]; t != nil {
		if rt := t.find(path, &c.params); rt != nil {
			c.matched(rt)
			return
		}
	}

	for _, m := range r.methods {
		if m == method {
			continue
		}
		if r.tables[m].find(path, &c.params) != nil {
			c.allowed = append(c.allowed, m)
		}
		c.params = c.params[:0]
	}

	if len(c.allowed) > 0 {
		c.result = MethodNotAllowed
		c.handlers = r.notAllowChain
		return
	}
	c.result = NotFound
	c.handlers = r.notFoundChain
}

// find looks path up in t. params is left empty on a miss.
func (t *methodTable) find(path string, params *[]Param) *Route {
	if t.static.DefinitelyAbsent(path) {
		return nil
	}
	if rt, ok := t.static.Lookup(path); ok {
		return rt
	}
	if !t.static.HasDynamic() {
		return nil
	}

	rt := t.root.lookup(path, params)
	if rt == nil {
		*params = (*params)[:0]
	}
	return rt
}
