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

// Package security sets response headers that harden browsers against
// framing, MIME sniffing and mixed content.
//
// The header set is computed once in New; each request copies it into the
// response before the rest of the chain runs, so 404 and 405 problem
// responses carry the same headers as matched routes.
//
//	r := router.MustNew()
//	r.Use(recovery.New(), security.New(security.WithFrameOptions("SAMEORIGIN")))
//
// Strict-Transport-Security is only sent on TLS connections.
package security
