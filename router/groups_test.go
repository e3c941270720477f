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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroup_Prefixes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	api := r.Group("/api")
	v1 := api.Group("/v1")
	users := v1.Group("/users")

	users.GET("", noop)
	users.GET("/:id", noop)
	users.POST("/:id/avatar", noop)
	_, err := v1.Register(http.MethodPut, "/settings", noop)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/users", users.Prefix())

	tests := []struct {
		method  string
		path    string
		pattern string
	}{
		{http.MethodGet, "/api/v1/users", "/api/v1/users"},
		{http.MethodGet, "/api/v1/users/3", "/api/v1/users/:id"},
		{http.MethodPost, "/api/v1/users/3/avatar", "/api/v1/users/:id/avatar"},
		{http.MethodPut, "/api/v1/settings", "/api/v1/settings"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()

			c, res := r.Dispatch(tt.method, tt.path)
			defer r.Release(c)

			require.Equal(t, Matched, res)
			assert.Equal(t, tt.pattern, c.RoutePattern())
		})
	}
}

func TestGroup_RegisterErrors(t *testing.T) {
	t.Parallel()

	r := MustNew()
	g := r.Group("/g")
	g.GET("/:id", noop)

	_, err := g.Register(http.MethodGet, "/:name", noop)
	require.ErrorIs(t, err, ErrParamConflict)

	bad := r.Group("nope")
	_, err = bad.Register(http.MethodGet, "/x", noop)
	require.ErrorIs(t, err, ErrInvalidPattern)

	assert.NotPanics(t, func() { g.DELETE("/:other", noop) }, "DELETE has its own tree")
}

func TestGroup_AllMethods(t *testing.T) {
	t.Parallel()

	r := MustNew()
	g := r.Group("/m")
	g.GET("/x", noop)
	g.POST("/x", noop)
	g.PUT("/x", noop)
	g.PATCH("/x", noop)
	g.DELETE("/x", noop)
	g.HEAD("/x", noop)
	g.OPTIONS("/x", noop)

	for _, m := range []string{
		http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
		http.MethodDelete, http.MethodHead, http.MethodOptions,
	} {
		c, res := r.Dispatch(m, "/m/x")
		assert.Equal(t, Matched, res, m)
		r.Release(c)
	}
}

func TestGroup_UseAfterFreezePanics(t *testing.T) {
	t.Parallel()

	r := MustNew()
	g := r.Group("/g")
	g.GET("/", noop)
	r.Freeze()

	assert.Panics(t, func() { g.Use(noop) })
}

func TestGroup_NilMiddlewarePanics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   string
		fn   func(r *Router)
	}{
		{name: "router group", op: "Group", fn: func(r *Router) { r.Group("/api", nil) }},
		{name: "router group after valid", op: "Group", fn: func(r *Router) { r.Group("/api", noop, nil) }},
		{name: "nested group", op: "Group", fn: func(r *Router) { r.Group("/api").Group("/v1", nil) }},
		{name: "group use", op: "Group.Use", fn: func(r *Router) { r.Group("/api").Use(nil) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := MustNew()
			assert.PanicsWithValue(t, "router: "+tt.op+": "+ErrNilHandler.Error(), func() { tt.fn(r) })
			assert.Empty(t, r.Routes())
		})
	}
}
