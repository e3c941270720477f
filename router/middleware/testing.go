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

package middleware

import (
	"io"
	"log/slog"
)

// NewTestLogger creates a silent logger for tests.
// This logger discards all output, making tests clean and focused.
//
// Example:
//
//	func TestAccessLog(t *testing.T) {
//	    logger := middleware.NewTestLogger()
//	    r := router.MustNew()
//	    r.Use(accesslog.New(accesslog.WithLogger(logger)))
//	    // ... test code
//	}
func NewTestLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// NewCaptureLogger creates a JSON logger that writes to w, at debug level,
// for tests that inspect log output.
//
// Example:
//
//	var buf bytes.Buffer
//	r.Use(accesslog.New(accesslog.WithLogger(middleware.NewCaptureLogger(&buf))))
func NewCaptureLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
