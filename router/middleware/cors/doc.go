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

// Package cors answers cross-origin requests for a routecore router.
//
// Install it as global middleware. Global middleware also runs in the
// 404 and 405 chains, so a preflight OPTIONS request for a path that only
// has GET or POST routes is answered here instead of by the 405 handler:
//
//	r := router.MustNew()
//	r.Use(cors.New(cors.WithAllowedOrigins("https://app.example.com")))
//	r.GET("/orders", listOrders)
//
// Without WithAllowedMethods the preflight's Access-Control-Allow-Methods
// lists the methods actually registered for the path.
package cors
