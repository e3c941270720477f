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

//go:build integration

package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rivaas.dev/routecore/router"
	"rivaas.dev/routecore/router/middleware"
	"rivaas.dev/routecore/router/middleware/accesslog"
	"rivaas.dev/routecore/router/middleware/recovery"
	"rivaas.dev/routecore/router/middleware/requestid"
	"rivaas.dev/routecore/router/middleware/timeout"
)

// syncBuffer is a bytes.Buffer safe for concurrent log writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// entries decodes every JSON log line written so far.
func (b *syncBuffer) entries() []map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(b.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		Expect(json.Unmarshal([]byte(line), &m)).To(Succeed())
		out = append(out, m)
	}
	return out
}

// byMsg filters entries by their msg field.
func byMsg(entries []map[string]any, msg string) []map[string]any {
	var out []map[string]any
	for _, e := range entries {
		if e["msg"] == msg {
			out = append(out, e)
		}
	}
	return out
}

var _ = Describe("Middleware Integration", Label("integration"), func() {
	var (
		logs *syncBuffer
		r    *router.Router
	)

	// The recommended order: request ID first so every later line carries
	// it, access log outside recovery so it sees the 500, timeout last.
	BeforeEach(func() {
		logs = &syncBuffer{}
		logger := middleware.NewCaptureLogger(logs)

		r = router.MustNew()
		r.Use(
			requestid.New(),
			accesslog.New(accesslog.WithLogger(logger), accesslog.WithExcludePaths("/health")),
			recovery.New(recovery.WithLogger(logger)),
			timeout.New(timeout.WithDuration(50*time.Millisecond), timeout.WithLogger(logger)),
		)
	})

	serve := func(method, target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
		return w
	}

	Describe("Basic stack", func() {
		It("tags the response and the access line with one request ID", func() {
			var seen string
			r.GET("/users/:id", func(c *router.Context) {
				seen = requestid.Get(c)
				_ = c.JSON(http.StatusOK, map[string]string{"id": c.ParamValue("id")})
			})

			w := serve(http.MethodGet, "/users/7")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(seen).NotTo(BeEmpty())
			Expect(w.Header().Get("X-Request-ID")).To(Equal(seen))

			access := byMsg(logs.entries(), "access")
			Expect(access).To(HaveLen(1))
			Expect(access[0]).To(HaveKeyWithValue("request_id", seen))
			Expect(access[0]).To(HaveKeyWithValue("route", "/users/:id"))
			Expect(access[0]).To(HaveKeyWithValue("result", "matched"))
			Expect(access[0]).To(HaveKeyWithValue("level", "INFO"))
		})

		It("skips excluded paths", func() {
			r.GET("/health", func(c *router.Context) { c.Status(http.StatusNoContent) })

			Expect(serve(http.MethodGet, "/health").Code).To(Equal(http.StatusNoContent))
			Expect(byMsg(logs.entries(), "access")).To(BeEmpty())
		})
	})

	Describe("Panics", func() {
		It("recovers, renders a problem and logs both lines with the same ID", func() {
			r.GET("/panic", func(*router.Context) { panic("kaboom") })

			w := serve(http.MethodGet, "/panic")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("application/problem+json"))
			Expect(w.Body.String()).NotTo(ContainSubstring("kaboom"))

			entries := logs.entries()
			panics := byMsg(entries, "panic recovered")
			access := byMsg(entries, "access")
			Expect(panics).To(HaveLen(1))
			Expect(access).To(HaveLen(1))
			Expect(access[0]).To(HaveKeyWithValue("level", "ERROR"))
			Expect(access[0]["status"]).To(BeNumerically("==", 500))
			Expect(access[0]["request_id"]).To(Equal(w.Header().Get("X-Request-ID")))
		})
	})

	Describe("Timeouts", func() {
		It("answers 503 when the handler honors the deadline", func() {
			r.GET("/slow", func(c *router.Context) {
				<-c.RequestContext().Done()
			})

			w := serve(http.MethodGet, "/slow")

			Expect(w.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(byMsg(logs.entries(), "request timeout")).To(HaveLen(1))

			access := byMsg(logs.entries(), "access")
			Expect(access).To(HaveLen(1))
			Expect(access[0]["status"]).To(BeNumerically("==", 503))
		})

		It("keeps a response the handler already wrote", func() {
			r.GET("/partial", func(c *router.Context) {
				_ = c.String(http.StatusAccepted, "queued")
				<-c.RequestContext().Done()
				Expect(errors.Is(c.RequestContext().Err(), context.DeadlineExceeded)).To(BeTrue())
			})

			w := serve(http.MethodGet, "/partial")

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(w.Body.String()).To(Equal("queued"))
			Expect(byMsg(logs.entries(), "request timeout")).To(BeEmpty())
		})
	})

	Describe("Routing fallbacks", func() {
		BeforeEach(func() {
			r.GET("/items", func(c *router.Context) { c.Status(http.StatusOK) })
		})

		DescribeTable("logs the outcome and still tags the response",
			func(method, target string, status int, result string) {
				w := serve(method, target)

				Expect(w.Code).To(Equal(status))
				Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())

				access := byMsg(logs.entries(), "access")
				Expect(access).To(HaveLen(1))
				Expect(access[0]).To(HaveKeyWithValue("result", result))
				Expect(access[0]).To(HaveKeyWithValue("level", "WARN"))
				Expect(access[0]).NotTo(HaveKey("route"))
			},
			Entry("unknown path", http.MethodGet, "/nope", http.StatusNotFound, "not_found"),
			Entry("wrong method", http.MethodPost, "/items", http.StatusMethodNotAllowed, "method_not_allowed"),
		)
	})

	Describe("Concurrency", func() {
		It("gives every concurrent request its own ID", func() {
			r.GET("/c/:n", func(c *router.Context) { c.Status(http.StatusOK) })

			const n = 50
			ids := make(chan string, n)
			var wg sync.WaitGroup
			for range n {
				wg.Go(func() {
					defer GinkgoRecover()
					w := serve(http.MethodGet, "/c/1")
					Expect(w.Code).To(Equal(http.StatusOK))
					ids <- w.Header().Get("X-Request-ID")
				})
			}
			wg.Wait()
			close(ids)

			unique := map[string]bool{}
			for id := range ids {
				unique[id] = true
			}
			Expect(unique).To(HaveLen(n))
			Expect(byMsg(logs.entries(), "access")).To(HaveLen(n))
		})
	})
})
