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

package tracing

import (
	"context"
	"testing"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// NewTestTracer returns a Tracer whose spans are kept in memory by the
// returned recorder. The provider is shut down when the test ends.
func NewTestTracer(tb testing.TB, opts ...Option) (*Tracer, *tracetest.SpanRecorder) {
	tb.Helper()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tb.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	t, err := New(context.Background(), append(opts, WithTracerProvider(provider))...)
	if err != nil {
		tb.Fatalf("tracing.New: %v", err)
	}
	return t, recorder
}
