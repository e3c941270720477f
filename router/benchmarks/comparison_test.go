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

// Package benchmarks compares routecore against other Go routers on the
// same route set. Run with:
//
//	go test ./router/benchmarks -bench=. -benchmem
package benchmarks

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/chi/v5"
	"github.com/labstack/echo/v4"

	"rivaas.dev/routecore/router"
)

// route is one registration in colon syntax; chi gets the brace form.
type route struct {
	method string
	path   string
}

var routes = []route{
	{http.MethodGet, "/"},
	{http.MethodGet, "/health"},
	{http.MethodGet, "/api/v1/users"},
	{http.MethodPost, "/api/v1/users"},
	{http.MethodGet, "/api/v1/users/:id"},
	{http.MethodPut, "/api/v1/users/:id"},
	{http.MethodDelete, "/api/v1/users/:id"},
	{http.MethodGet, "/api/v1/users/:id/posts"},
	{http.MethodGet, "/api/v1/users/:id/posts/:post_id"},
	{http.MethodGet, "/api/v1/orgs/:org/repos/:repo/issues/:number"},
	{http.MethodGet, "/static/*filepath"},
}

// requests are the workloads each router is measured on.
var requests = []struct {
	name   string
	method string
	path   string
}{
	{"static", http.MethodGet, "/api/v1/users"},
	{"param", http.MethodGet, "/api/v1/users/123"},
	{"params3", http.MethodGet, "/api/v1/orgs/acme/repos/router/issues/42"},
	{"wildcard", http.MethodGet, "/static/css/site.css"},
	{"not_found", http.MethodGet, "/api/v2/unknown"},
}

var body = []byte("ok")

func chiPath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		switch {
		case strings.HasPrefix(s, ":"):
			segs[i] = "{" + s[1:] + "}"
		case strings.HasPrefix(s, "*"):
			segs[i] = "*"
		}
	}
	return strings.Join(segs, "/")
}

func newRoutecore() http.Handler {
	r := router.MustNew()
	for _, rt := range routes {
		r.Handle(rt.method, rt.path, func(c *router.Context) {
			c.Response.WriteHeader(http.StatusOK)
			_, _ = c.Response.Write(body)
		})
	}
	r.Freeze()
	return r
}

func newGin() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	for _, rt := range routes {
		r.Handle(rt.method, rt.path, func(c *gin.Context) {
			c.Data(http.StatusOK, "", body)
		})
	}
	return r
}

func newEcho() http.Handler {
	e := echo.New()
	for _, rt := range routes {
		e.Add(rt.method, rt.path, func(c echo.Context) error {
			return c.Blob(http.StatusOK, "", body)
		})
	}
	return e
}

func newChi() http.Handler {
	r := chi.NewRouter()
	for _, rt := range routes {
		r.MethodFunc(rt.method, chiPath(rt.path), func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(body)
		})
	}
	return r
}

var routers = []struct {
	name string
	new  func() http.Handler
}{
	{"routecore", newRoutecore},
	{"gin", newGin},
	{"echo", newEcho},
	{"chi", newChi},
}

// discard is a ResponseWriter that never allocates.
type discard struct {
	header http.Header
	code   int
}

func (d *discard) Header() http.Header         { return d.header }
func (d *discard) Write(p []byte) (int, error) { return len(p), nil }
func (d *discard) WriteHeader(code int)        { d.code = code }

func BenchmarkRouters(b *testing.B) {
	for _, rr := range routers {
		h := rr.new()
		for _, req := range requests {
			b.Run(rr.name+"/"+req.name, func(b *testing.B) {
				r := httptest.NewRequest(req.method, req.path, nil)
				w := &discard{header: make(http.Header)}

				b.ReportAllocs()
				for b.Loop() {
					h.ServeHTTP(w, r)
					clear(w.header)
				}
			})
		}
	}
}

func BenchmarkRoutersParallel(b *testing.B) {
	for _, rr := range routers {
		h := rr.new()
		b.Run(rr.name, func(b *testing.B) {
			b.ReportAllocs()
			b.RunParallel(func(pb *testing.PB) {
				r := httptest.NewRequest(http.MethodGet, "/api/v1/users/123/posts/9", nil)
				w := &discard{header: make(http.Header)}
				for pb.Next() {
					h.ServeHTTP(w, r)
					clear(w.header)
				}
			})
		})
	}
}

// TestRoutersAgree checks every workload gets the same status from every
// router so the benchmarks compare like with like.
func TestRoutersAgree(t *testing.T) {
	t.Parallel()

	handlers := make(map[string]http.Handler, len(routers))
	for _, rr := range routers {
		handlers[rr.name] = rr.new()
	}

	for _, req := range requests {
		t.Run(req.name, func(t *testing.T) {
			t.Parallel()

			want := http.StatusOK
			if req.name == "not_found" {
				want = http.StatusNotFound
			}
			for name, h := range handlers {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(req.method, req.path, nil))
				_, _ = io.Copy(io.Discard, w.Body)
				if w.Code != want {
					t.Errorf("%s: %s %s = %d, want %d", name, req.method, req.path, w.Code, want)
				}
			}
		})
	}
}
