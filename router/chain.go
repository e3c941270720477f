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

// Chain composition.
//
// A route's chain is built once, at freeze:
//
//	global middleware (registration order)
//	+ enclosing groups, outermost to innermost
//	+ route middleware
//	+ handler
//
// Requests reuse the composed slice; nothing is rebuilt per request.

// groupLayers returns the middleware of g and its ancestors, outermost
// first.
func groupLayers(g *Group) [][]HandlerFunc {
	var layers [][]HandlerFunc
	for ; g != nil; g = g.parent {
		if len(g.middleware) > 0 {
			layers = append(layers, g.middleware)
		}
	}
	for i, j := 0, len(layers)-1; i < j; i, j = i+1, j-1 {
		layers[i], layers[j] = layers[j], layers[i]
	}
	return layers
}

// composeChain concatenates layers and a terminal handler into a slice of
// exactly the needed size.
func composeChain(global []HandlerFunc, groups [][]HandlerFunc, route []HandlerFunc, handler HandlerFunc) []HandlerFunc {
	n := len(global) + len(route) + 1
	for _, l := range groups {
		n += len(l)
	}

	chain := make([]HandlerFunc, 0, n)
	chain = append(chain, global...)
	for _, l := range groups {
		chain = append(chain, l...)
	}
	chain = append(chain, route...)
	return append(chain, handler)
}

// composeRoute builds rt's chain against the current global middleware.
func (r *Router) composeRoute(rt *Route) []HandlerFunc {
	return composeChain(r.middleware, groupLayers(rt.group), rt.middleware, rt.handler)
}
