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
	"net/url"
	"path/filepath"
	"reflect"
	"runtime"
	"slices"
	"strings"
)

// Route is a registered (method, pattern) pair bound to a handler and its
// route-specific middleware. The composed chain is filled in at freeze.
type Route struct {
	router     *Router
	group      *Group
	method     string
	pattern    string
	parts      []patternPart
	paramNames []string
	handler    HandlerFunc
	middleware []HandlerFunc
	name       string
	chain      []HandlerFunc // global + groups + route middleware + handler
}

// Method returns the HTTP method for this route.
func (rt *Route) Method() string { return rt.method }

// Pattern returns the route pattern as registered, group prefix included.
func (rt *Route) Pattern() string { return rt.pattern }

// Name returns the route name (empty if not named).
func (rt *Route) Name() string { return rt.name }

// ParamNames returns the parameter and wildcard names in declaration order.
func (rt *Route) ParamNames() []string { return slices.Clone(rt.paramNames) }

// IsStatic reports whether the pattern has no parameters or wildcard.
func (rt *Route) IsStatic() bool { return len(rt.paramNames) == 0 }

// SetName assigns a name to the route for reverse routing and
// introspection. Names from groups are prefixed with the group's name
// prefix. Panics if the router is frozen or the name is already taken.
//
// Example:
//
//	r.GET("/users/:id", getUser).SetName("users.get")
func (rt *Route) SetName(name string) *Route {
	if rt.group != nil {
		name = rt.group.namePrefix + name
	}
	if err := rt.router.nameRoute(rt, name); err != nil {
		panic(fmt.Sprintf("router: SetName(%q): %v", name, err))
	}
	return rt
}

// buildURL fills the pattern with params. Parameter values are
// path-escaped; wildcard values keep their '/' separators.
func (rt *Route) buildURL(params map[string]string, query url.Values) (string, error) {
	var sb strings.Builder
	for _, p := range rt.parts {
		switch p.kind {
		case partStatic:
			sb.WriteString(p.text)
		case partParam:
			v, ok := params[p.text]
			if !ok || v == "" {
				return "", fmt.Errorf("%w: %s", ErrMissingRouteParameter, p.text)
			}
			sb.WriteString(url.PathEscape(v))
		case partWildcard:
			v, ok := params[p.text]
			if !ok || v == "" {
				return "", fmt.Errorf("%w: %s", ErrMissingRouteParameter, p.text)
			}
			for i, seg := range strings.Split(v, "/") {
				if i > 0 {
					sb.WriteByte('/')
				}
				sb.WriteString(url.PathEscape(seg))
			}
		}
	}
	if len(query) > 0 {
		sb.WriteByte('?')
		sb.WriteString(query.Encode())
	}
	return sb.String(), nil
}

// RouteInfo describes a registered route for introspection.
type RouteInfo struct {
	Method      string   // HTTP method (GET, POST, etc.)
	Path        string   // Route pattern (/users/:id)
	Name        string   // Route name, empty if unnamed
	HandlerName string   // Name of the handler function
	Middleware  []string // Middleware names in execution order, handler excluded
	ParamNames  []string // Parameter names in declaration order
	IsStatic    bool     // True if route has no dynamic parameters
}

// info describes rt with the given composed chain.
func (rt *Route) info(chain []HandlerFunc) RouteInfo {
	mw := make([]string, 0, len(chain))
	for _, h := range chain[:len(chain)-1] {
		mw = append(mw, handlerName(h))
	}
	return RouteInfo{
		Method:      rt.method,
		Path:        rt.pattern,
		Name:        rt.name,
		HandlerName: handlerName(rt.handler),
		Middleware:  mw,
		ParamNames:  slices.Clone(rt.paramNames),
		IsStatic:    rt.IsStatic(),
	}
}

// sortRouteInfos orders by method, then by path.
func sortRouteInfos(infos []RouteInfo) {
	slices.SortFunc(infos, func(a, b RouteInfo) int {
		if c := strings.Compare(a.Method, b.Method); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// handlerName returns "pkg.Func() (file.go:42)" for h.
func handlerName(h HandlerFunc) string {
	if h == nil {
		return "nil"
	}

	fn := runtime.FuncForPC(reflect.ValueOf(h).Pointer())
	if fn == nil {
		return "unknown"
	}
	file, line := fn.FileLine(fn.Entry())

	return fmt.Sprintf("%s (%s:%d)", cleanFuncName(fn.Name()), filepath.Base(file), line)
}

// cleanFuncName turns "pkg.Func.func1.2" into "pkg.Func(λ)" and plain
// names into "pkg.Func()".
func cleanFuncName(name string) string {
	if i := strings.Index(name, ".func"); i > 0 {
		suffix := name[i+5:]
		if suffix != "" && strings.Trim(suffix, "0123456789.") == "" {
			return name[:i] + "(λ)"
		}
	}
	return strings.TrimSuffix(name, "-fm") + "()"
}
