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
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listUsers(*Context) {}

func TestURLFor(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/users/:id", noop).SetName("users.get")
	r.GET("/files/*path", noop).SetName("files")
	r.GET("/health", noop).SetName("health")

	tests := []struct {
		name    string
		route   string
		params  map[string]string
		query   url.Values
		want    string
		wantErr error
	}{
		{name: "param", route: "users.get", params: map[string]string{"id": "42"}, want: "/users/42"},
		{name: "param escaped", route: "users.get", params: map[string]string{"id": "a/b c"}, want: "/users/a%2Fb%20c"},
		{name: "wildcard keeps slashes", route: "files", params: map[string]string{"path": "docs/a b.txt"}, want: "/files/docs/a%20b.txt"},
		{name: "static with query", route: "health", query: url.Values{"verbose": {"1"}}, want: "/health?verbose=1"},
		{name: "missing param", route: "users.get", wantErr: ErrMissingRouteParameter},
		{name: "empty param", route: "users.get", params: map[string]string{"id": ""}, wantErr: ErrMissingRouteParameter},
		{name: "unknown route", route: "nope", wantErr: ErrRouteNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.URLFor(tt.route, tt.params, tt.query)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestURLFor_RoundTrip(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.GET("/users/:id/posts/:post", noop).SetName("post")

	u := r.MustURLFor("post", map[string]string{"id": "a b", "post": "7"}, nil)

	req, err := http.NewRequest(http.MethodGet, u, nil)
	require.NoError(t, err)

	c, res := r.Dispatch(http.MethodGet, req.URL.Path)
	defer r.Release(c)
	require.Equal(t, Matched, res)
	assert.Equal(t, "a b", c.ParamValue("id"))
	assert.Equal(t, "7", c.ParamValue("post"))

	assert.Panics(t, func() { r.MustURLFor("missing", nil, nil) })
}

func TestSetName(t *testing.T) {
	t.Parallel()

	r := MustNew()
	api := r.Group("/api").SetNamePrefix("api.")
	v1 := api.Group("/v1").SetNamePrefix("v1.")
	rt := v1.GET("/users", listUsers).SetName("users.list")

	assert.Equal(t, "api.v1.users.list", rt.Name())
	u, err := r.URLFor("api.v1.users.list", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/users", u)

	// Renaming frees the old name.
	rt.SetName("users.all")
	_, err = r.URLFor("api.v1.users.list", nil, nil)
	require.ErrorIs(t, err, ErrRouteNotFound)

	other := r.GET("/other", noop)
	assert.Panics(t, func() { other.SetName("api.v1.users.all") }, "name taken")

	r.Freeze()
	assert.Panics(t, func() { other.SetName("late") })
}

func TestRoute_Accessors(t *testing.T) {
	t.Parallel()

	r := MustNew()
	rt := r.POST("/users/:id/files/*path", noop)

	assert.Equal(t, http.MethodPost, rt.Method())
	assert.Equal(t, "/users/:id/files/*path", rt.Pattern())
	assert.Equal(t, []string{"id", "path"}, rt.ParamNames())
	assert.False(t, rt.IsStatic())
	assert.True(t, r.GET("/", noop).IsStatic())
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	r.Use(noop)
	r.POST("/users", noop)
	r.GET("/users/:id", noop).SetName("users.get")
	r.GET("/users", listUsers)

	check := func(t *testing.T, infos []RouteInfo) {
		t.Helper()

		require.Len(t, infos, 3)
		assert.Equal(t, "GET", infos[0].Method)
		assert.Equal(t, "/users", infos[0].Path)
		assert.True(t, infos[0].IsStatic)
		assert.True(t, strings.HasPrefix(infos[0].HandlerName, "rivaas.dev/routecore/router.listUsers()"), infos[0].HandlerName)
		assert.Len(t, infos[0].Middleware, 1)

		assert.Equal(t, "/users/:id", infos[1].Path)
		assert.Equal(t, "users.get", infos[1].Name)
		assert.Equal(t, []string{"id"}, infos[1].ParamNames)
		assert.False(t, infos[1].IsStatic)

		assert.Equal(t, "POST", infos[2].Method)
	}

	t.Run("before freeze", func(t *testing.T) {
		check(t, r.Routes())
	})

	r.Freeze()

	t.Run("after freeze", func(t *testing.T) {
		infos := r.Routes()
		check(t, infos)

		infos[0].Path = "mutated"
		assert.Equal(t, "/users", r.Routes()[0].Path, "Routes returns a copy")
	})
}

func TestCleanFuncName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"main.handler", "main.handler()"},
		{"main.Setup.func1", "main.Setup(λ)"},
		{"main.Setup.func1.2", "main.Setup(λ)"},
		{"main.(*Server).Get-fm", "main.(*Server).Get()"},
		{"main.functional", "main.functional()"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cleanFuncName(tt.in))
		})
	}
}
