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

// Package errors formats routing outcomes and handler failures as HTTP
// error responses.
//
// A Formatter turns an error into a Response (status, content type, body).
// Two formatters are provided:
//   - RFC9457: RFC 9457 Problem Details (application/problem+json)
//   - Simple: a flat JSON object (application/json)
//
// The router uses a Formatter for its default 404 and 405 responses and the
// recovery middleware uses one for 500 responses. Errors control the output
// by implementing the optional ErrorType, ErrorDetails and ErrorCode
// interfaces; the RouteError values returned by NotFound, MethodNotAllowed
// and Internal implement all three.
//
// # Quick Start
//
//	formatter := errors.NewRFC9457("https://api.example.com/problems")
//	errors.Write(w, r, formatter, errors.NotFound(r.URL.Path))
//
// produces
//
//	HTTP/1.1 404 Not Found
//	Content-Type: application/problem+json; charset=utf-8
//
//	{"type":"https://api.example.com/problems/route_not_found","title":"Not Found",
//	 "status":404,"detail":"no route matches /missing","instance":"/missing",
//	 "code":"route_not_found","error_id":"7c0e..."}
package errors
