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

package router_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"rivaas.dev/routecore/metrics"
	"rivaas.dev/routecore/router"
	"rivaas.dev/routecore/router/middleware/requestid"
	"rivaas.dev/routecore/tracing"
)

func get(srv *httptest.Server, method, path string) (*http.Response, string) {
	req, err := http.NewRequest(method, srv.URL+path, nil)
	Expect(err).NotTo(HaveOccurred())
	resp, err := srv.Client().Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, string(body)
}

var _ = Describe("Router over HTTP", func() {
	var (
		r     *router.Router
		srv   *httptest.Server
		trail []string
		mu    sync.Mutex
	)

	record := func(s string) router.HandlerFunc {
		return func(c *router.Context) {
			mu.Lock()
			trail = append(trail, s)
			mu.Unlock()
			c.Next()
		}
	}

	BeforeEach(func() {
		trail = nil
		r = router.MustNew(router.WithPoolWarmup(4))
		r.Use(record("global"))

		r.GET("/", func(c *router.Context) { _ = c.String(http.StatusOK, "root") })
		r.GET("/users/:id", func(c *router.Context) {
			_ = c.JSON(http.StatusOK, map[string]string{"id": c.ParamValue("id"), "route": c.RoutePattern()})
		})
		r.POST("/users", func(c *router.Context) { _ = c.String(http.StatusCreated, "created") })
		r.GET("/files/*path", func(c *router.Context) { _ = c.String(http.StatusOK, "%s", c.ParamValue("path")) })

		api := r.Group("/api", record("api"))
		v1 := api.Group("/v1", record("v1"))
		v1.GET("/orders/:order/items/:item", record("route"), func(c *router.Context) {
			_ = c.String(http.StatusOK, "%s/%s", c.ParamValue("order"), c.ParamValue("item"))
		})

		srv = httptest.NewServer(r)
		DeferCleanup(srv.Close)
	})

	Describe("matching", func() {
		DescribeTable("resolves requests",
			func(method, path string, status int, body string) {
				resp, got := get(srv, method, path)
				Expect(resp.StatusCode).To(Equal(status))
				if body != "" {
					Expect(got).To(ContainSubstring(body))
				}
			},
			Entry("root", http.MethodGet, "/", http.StatusOK, "root"),
			Entry("param", http.MethodGet, "/users/42", http.StatusOK, `"id":"42"`),
			Entry("pattern exposed", http.MethodGet, "/users/42", http.StatusOK, `"route":"/users/:id"`),
			Entry("static beside param", http.MethodPost, "/users", http.StatusCreated, "created"),
			Entry("wildcard", http.MethodGet, "/files/a/b/c.txt", http.StatusOK, "a/b/c.txt"),
			Entry("nested groups", http.MethodGet, "/api/v1/orders/7/items/9", http.StatusOK, "7/9"),
			Entry("unknown path", http.MethodGet, "/nope", http.StatusNotFound, ""),
			Entry("strict trailing slash", http.MethodGet, "/users/42/", http.StatusNotFound, ""),
		)

		It("answers 405 with a sorted Allow header", func() {
			resp, body := get(srv, http.MethodDelete, "/users")
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
			Expect(resp.Header.Get("Allow")).To(Equal("POST"))
			Expect(resp.Header.Get("Content-Type")).To(HavePrefix("application/problem+json"))

			var problem map[string]any
			Expect(json.Unmarshal([]byte(body), &problem)).To(Succeed())
			Expect(problem).To(HaveKeyWithValue("status", BeNumerically("==", http.StatusMethodNotAllowed)))
		})

		It("unescapes parameter values from the encoded path", func() {
			_, body := get(srv, http.MethodGet, "/users/a%2Fb")
			Expect(body).To(ContainSubstring(`"id":"a/b"`))
		})
	})

	Describe("middleware", func() {
		It("runs global, group and route middleware in order", func() {
			resp, _ := get(srv, http.MethodGet, "/api/v1/orders/1/items/2")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			mu.Lock()
			defer mu.Unlock()
			Expect(trail).To(Equal([]string{"global", "api", "v1", "route"}))
		})

		It("runs global middleware for 404s", func() {
			get(srv, http.MethodGet, "/missing")

			mu.Lock()
			defer mu.Unlock()
			Expect(trail).To(Equal([]string{"global"}))
		})
	})

	Describe("context pool", func() {
		It("returns every context under concurrent load", func() {
			const workers = 16
			const perWorker = 50

			var wg sync.WaitGroup
			for range workers {
				wg.Go(func() {
					defer GinkgoRecover()
					for i := range perWorker {
						path := "/users/1"
						if i%3 == 0 {
							path = "/missing"
						}
						resp, _ := get(srv, http.MethodGet, path)
						Expect(resp.StatusCode).To(BeElementOf(http.StatusOK, http.StatusNotFound))
					}
				})
			}
			wg.Wait()

			stats := r.PoolStats()
			Expect(stats.InFlight).To(BeZero())
			Expect(stats.DoubleReleases).To(BeZero())
			Expect(stats.Acquires).To(BeNumerically(">=", workers*perWorker))
		})
	})
})

var _ = Describe("Router with observability", func() {
	It("records metrics and spans for matched and unmatched requests", func() {
		rec := metrics.MustNew()
		DeferCleanup(rec.Shutdown, context.Background())

		spans := tracetest.NewSpanRecorder()
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
		DeferCleanup(tp.Shutdown, context.Background())
		tracer := tracing.MustNew(context.Background(), tracing.WithTracerProvider(tp))

		r := router.MustNew()
		r.Use(requestid.New(), tracer.Middleware(), metrics.Middleware(rec))
		r.GET("/orders/:id", func(c *router.Context) { _ = c.String(http.StatusOK, "order") })
		rec.Mount(r, "/metrics")

		srv := httptest.NewServer(r)
		DeferCleanup(srv.Close)

		resp, _ := get(srv, http.MethodGet, "/orders/5")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("X-Request-ID")).NotTo(BeEmpty())
		get(srv, http.MethodGet, "/nowhere")

		ended := spans.Ended()
		names := make([]string, 0, len(ended))
		for _, s := range ended {
			names = append(names, s.Name())
		}
		Expect(names).To(ContainElements("GET /orders/:id", "GET"))

		_, body := get(srv, http.MethodGet, "/metrics")
		Expect(body).To(ContainSubstring("http_server_request_duration"))
		Expect(strings.Contains(body, `http_route="/orders/:id"`)).To(BeTrue())
		Expect(body).To(ContainSubstring(`routecore_result="not_found"`))
	})
})
