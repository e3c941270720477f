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

// Package tracing creates OpenTelemetry spans for routed requests.
//
// A Tracer owns (or borrows) a tracer provider. Its Middleware starts one
// server span per request, continues any W3C trace context found in the
// request headers, and names the span after the matched route pattern:
//
//	tr, err := tracing.New(ctx,
//	    tracing.WithServiceName("orders"),
//	    tracing.WithOTLP("http://otel-collector:4318"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer tr.Shutdown(context.Background())
//
//	r := router.MustNew()
//	r.Use(tr.Middleware(), recovery.New())
//
// Handlers see the span through c.RequestContext(), so logging.TraceHandler
// and recovery's span marking pick it up without further wiring.
//
// # Providers
//
//   - NoopProvider (default): spans are created and sampled but not exported
//   - StdoutProvider: spans are written as JSON, for development
//   - OTLPHTTPProvider: spans are batched to an OTLP/HTTP collector
//
// # Global State
//
// New does not set the global tracer provider or propagator unless
// WithGlobalTracerProvider is passed.
package tracing
