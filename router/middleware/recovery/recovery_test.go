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

package recovery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/routecore/router"
	"rivaas.dev/routecore/router/middleware"
)

func TestRecovery_BasicPanic(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	r.Use(New(WithLogger(middleware.NewTestLogger())))
	r.GET("/panic", func(*router.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json; charset=utf-8", w.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal_error", body["code"])
	assert.NotContains(t, w.Body.String(), "test panic", "panic value must not leak to clients")

	stats := r.PoolStats()
	assert.Zero(t, stats.InFlight)
}

func TestRecovery_NoPanic(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	r.Use(New())
	r.GET("/safe", func(c *router.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"message": "success"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/safe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_CustomHandler(t *testing.T) {
	t.Parallel()

	var called bool
	r := router.MustNew()
	r.Use(New(
		WithLogger(middleware.NewTestLogger()),
		WithHandler(func(c *router.Context, err any) {
			called = true
			_ = c.JSON(http.StatusInternalServerError, map[string]any{
				"custom_error": "Custom recovery",
				"panic_value":  err,
			})
		}),
	))
	r.GET("/panic", func(*router.Context) {
		panic("custom panic")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Custom recovery", body["custom_error"])
	assert.Equal(t, "custom panic", body["panic_value"])
}

func TestRecovery_LogFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      []Option
		wantStack bool
		maxStack  int
	}{
		{name: "default stack", wantStack: true, maxStack: 4 << 10},
		{name: "small stack", opts: []Option{WithStackSize(64)}, wantStack: true, maxStack: 64},
		{name: "stack disabled", opts: []Option{WithStackTrace(false)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var logged any
			var stack []byte
			opts := append([]Option{WithLogFunc(func(_ *router.Context, err any, s []byte) {
				logged = err
				stack = s
			})}, tt.opts...)

			r := router.MustNew()
			r.Use(New(opts...))
			r.GET("/panic", func(*router.Context) {
				panic("logger test panic")
			})

			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))

			assert.Equal(t, "logger test panic", logged)
			if tt.wantStack {
				assert.NotEmpty(t, stack)
				assert.LessOrEqual(t, len(stack), tt.maxStack)
			} else {
				assert.Nil(t, stack)
			}
		})
	}
}

func TestRecovery_SlogOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := middleware.NewCaptureLogger(&buf)

	r := router.MustNew()
	r.Use(New(WithLogger(logger), WithStackTrace(false)))
	r.GET("/users/:id", func(*router.Context) {
		panic("db down")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/9", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "panic recovered", entry["msg"])
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "db down", entry["error"])
	assert.Equal(t, "/users/9", entry["path"])
	assert.Equal(t, "/users/:id", entry["route"])
	assert.NotContains(t, entry, "stack")
}

func TestRecovery_ResponseAlreadyStarted(t *testing.T) {
	t.Parallel()

	var handlerCalled bool
	r := router.MustNew()
	r.Use(New(
		WithLogger(middleware.NewTestLogger()),
		WithHandler(func(*router.Context, any) { handlerCalled = true }),
	))
	r.GET("/partial", func(c *router.Context) {
		_ = c.String(http.StatusOK, "partial")
		panic("after write")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/partial", nil))

	assert.False(t, handlerCalled)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}

func TestRecovery_AbortHandlerRepanics(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	r.Use(New(WithLogger(middleware.NewTestLogger())))
	r.GET("/abort", func(*router.Context) {
		panic(http.ErrAbortHandler)
	})

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	})
	assert.Zero(t, r.PoolStats().InFlight)
}

func TestRecovery_MarksSpan(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })

	r := router.MustNew()
	r.Use(func(c *router.Context) {
		ctx, span := tp.Tracer("test").Start(c.RequestContext(), "request")
		defer span.End()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})
	r.Use(New(WithLogger(middleware.NewTestLogger())))
	r.GET("/panic", func(*router.Context) {
		panic("traced panic")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/panic", nil))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "true", attrs["exception.escaped"])
	assert.Equal(t, "string", attrs["exception.type"])
	assert.True(t, strings.Contains(attrs["exception.message"], "traced panic"))
}
