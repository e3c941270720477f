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

package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rivaas.dev/routecore/router"
)

func serve(t *testing.T, mw router.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := router.MustNew()
	r.Use(mw)
	r.GET("/", func(c *router.Context) { _ = c.String(http.StatusOK, "ok") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSecurity_Defaults(t *testing.T) {
	t.Parallel()

	w := serve(t, New(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "0", w.Header().Get("X-XSS-Protection"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Empty(t, w.Header().Get("Permissions-Policy"))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"), "plain HTTP gets no HSTS")
}

func TestSecurity_HSTS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{name: "default", want: "max-age=31536000; includeSubDomains"},
		{name: "preload", opts: []Option{WithHSTS(63072000, true, true)}, want: "max-age=63072000; includeSubDomains; preload"},
		{name: "no subdomains", opts: []Option{WithHSTS(60, false, false)}, want: "max-age=60"},
		{name: "disabled", opts: []Option{WithHSTS(0, true, true)}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.TLS = &tls.ConnectionState{}
			w := serve(t, New(tt.opts...), req)
			assert.Equal(t, tt.want, w.Header().Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurity_Overrides(t *testing.T) {
	t.Parallel()

	mw := New(
		WithFrameOptions("SAMEORIGIN"),
		WithContentTypeNosniff(false),
		WithXSSProtection(""),
		WithPermissionsPolicy("camera=()"),
		WithCrossOriginOpenerPolicy("same-origin"),
		WithCustomHeader("x-frame-options", "ALLOW-FROM https://a.example"),
		WithCustomHeader("X-Powered-By", "routecore"),
	)
	w := serve(t, mw, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "ALLOW-FROM https://a.example", w.Header().Get("X-Frame-Options"), "custom header wins")
	assert.Empty(t, w.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, w.Header().Values("X-XSS-Protection"))
	assert.Equal(t, "camera=()", w.Header().Get("Permissions-Policy"))
	assert.Equal(t, "same-origin", w.Header().Get("Cross-Origin-Opener-Policy"))
	assert.Equal(t, "routecore", w.Header().Get("X-Powered-By"))
}

func TestSecurity_AppliesToNotFound(t *testing.T) {
	t.Parallel()

	w := serve(t, New(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}
