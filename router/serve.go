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
	"net/http"
	"strings"
)

// ServeHTTP dispatches req and runs the resulting chain.
//
// For each request:
//  1. Freezes the router on first use
//  2. Picks the path to match (RawPath decoded except for %2F and %25 when
//     value unescaping is enabled, see WithUnescapePathValues)
//  3. Applies the trailing slash policy, redirecting if configured
//  4. Acquires a pooled context and resolves the route
//  5. Sets Allow for 405 results and runs the chain
//  6. Releases the context, also when a handler panics
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if !r.frozen.Load() {
		r.Freeze()
	}

	path, encoded := r.requestPath(req)

	if r.trailingSlash == TrailingSlashRedirect && r.redirectTrailingSlash(w, req, path) {
		return
	}

	c := r.pool.Acquire()
	defer r.Release(c)

	c.Attach(w, req)
	r.resolve(c, req.Method, path)
	if encoded {
		c.unescapeParams()
	}
	if c.result == MethodNotAllowed {
		w.Header().Set("Allow", strings.Join(c.allowed, ", "))
	}

	c.Next()
}

// requestPath returns the path to match and whether parameter values
// still carry escapes. With unescaping enabled and a RawPath present,
// every escape except %2F and %25 is decoded before matching, so static
// segments compare decoded while an encoded '/' never splits a segment.
func (r *Router) requestPath(req *http.Request) (string, bool) {
	if !r.unescapeValues || req.URL.RawPath == "" {
		return req.URL.Path, false
	}
	path := unescapeExceptSlash(req.URL.RawPath)
	return path, strings.IndexByte(path, '%') >= 0
}

// unescapeExceptSlash decodes %XX sequences other than %2F and %25.
// Malformed escapes are kept as they are.
func unescapeExceptSlash(s string) string {
	i := strings.IndexByte(s, '%')
	if i < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(s[:i])
	for ; i < len(s); i++ {
		ch := s[i]
		if ch != '%' || i+2 >= len(s) {
			b.WriteByte(ch)
			continue
		}
		hi, ok1 := unhex(s[i+1])
		lo, ok2 := unhex(s[i+2])
		v := hi<<4 | lo
		if !ok1 || !ok2 || v == '/' || v == '%' {
			b.WriteByte(ch)
			continue
		}
		b.WriteByte(v)
		i += 2
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// redirectTrailingSlash answers 308 when path ends in '/' and the path
// without it routes under some method. It reports whether it responded.
func (r *Router) redirectTrailingSlash(w http.ResponseWriter, req *http.Request, path string) bool {
	trimmed := trimTrailingSlash(path)
	if trimmed == path {
		return false
	}

	c := r.pool.Acquire()
	r.resolve(c, req.Method, trimmed)
	res := c.result
	r.Release(c)
	if res == NotFound {
		return false
	}

	target := trimTrailingSlash(req.URL.EscapedPath())
	if req.URL.RawQuery != "" {
		target += "?" + req.URL.RawQuery
	}
	http.Redirect(w, req, target, http.StatusPermanentRedirect)
	return true
}
