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

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotFound is the cause of every NotFound error.
	ErrNotFound = errors.New("route not found")

	// ErrMethodNotAllowed is the cause of every MethodNotAllowed error.
	ErrMethodNotAllowed = errors.New("method not allowed")

	// ErrInternal is the cause of every Internal error.
	ErrInternal = errors.New("internal server error")
)

// RouteError is a routing outcome or handler failure rendered as an HTTP
// error. It implements ErrorType, ErrorCode and ErrorDetails, and may carry
// response headers such as Allow.
type RouteError struct {
	status  int
	code    string
	message string
	details any
	header  http.Header
	cause   error
	panic   any
}

// NotFound reports that no route matches path.
func NotFound(path string) *RouteError {
	return &RouteError{
		status:  http.StatusNotFound,
		code:    "route_not_found",
		message: "no route matches " + path,
		cause:   ErrNotFound,
	}
}

// MethodNotAllowed reports that path exists but not for method. The
// allowed methods are exposed as details and as the Allow header.
func MethodNotAllowed(method, path string, allowed []string) *RouteError {
	h := make(http.Header, 1)
	h.Set("Allow", strings.Join(allowed, ", "))

	return &RouteError{
		status:  http.StatusMethodNotAllowed,
		code:    "method_not_allowed",
		message: fmt.Sprintf("method %s is not allowed for %s", method, path),
		details: map[string]any{"allowed": allowed},
		header:  h,
		cause:   ErrMethodNotAllowed,
	}
}

// Internal reports a handler failure. The recovered value is kept for
// logging through Recovered but never rendered into the response.
func Internal(recovered any) *RouteError {
	return &RouteError{
		status:  http.StatusInternalServerError,
		code:    "internal_error",
		message: "the server encountered an internal error",
		cause:   ErrInternal,
		panic:   recovered,
	}
}

// Error implements error.
func (e *RouteError) Error() string { return e.message }

// HTTPStatus implements ErrorType.
func (e *RouteError) HTTPStatus() int { return e.status }

// Code implements ErrorCode.
func (e *RouteError) Code() string { return e.code }

// Details implements ErrorDetails.
func (e *RouteError) Details() any { return e.details }

// Header returns headers that must accompany the response, or nil.
func (e *RouteError) Header() http.Header { return e.header }

// Unwrap returns the sentinel cause and, for Internal, a recovered value
// that is itself an error.
func (e *RouteError) Unwrap() []error {
	if err, ok := e.panic.(error); ok {
		return []error{e.cause, err}
	}
	return []error{e.cause}
}

// Recovered returns the value passed to Internal, or nil.
func (e *RouteError) Recovered() any { return e.panic }

// headersOf returns the headers carried by err, or nil.
func headersOf(err error) http.Header {
	var h interface{ Header() http.Header }
	if errors.As(err, &h) {
		return h.Header()
	}
	return nil
}
