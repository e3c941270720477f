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

// Package logging provides the structured logger used by routecore
// services and the router itself.
//
// It is a thin layer over log/slog: a Logger picks a JSON or text handler,
// stamps every record with the service name, version and environment, and
// adds the trace_id and span_id of the active OpenTelemetry span when a
// *Context logging method is used.
//
// # Basic Usage
//
//	logger := logging.MustNew(
//	    logging.WithJSONHandler(),
//	    logging.WithServiceName("orders"),
//	)
//	logger.Info("service started", "port", 8080)
//
// # With the Router
//
// The router takes a plain *slog.Logger for registration and diagnostic
// messages:
//
//	r := router.MustNew(router.WithLogger(logger.Logger()))
//
// # Trace Correlation
//
// Records logged through the slog *Context methods pick up the span held by
// ctx, so request logs and traces can be joined on trace_id:
//
//	logger.Logger().InfoContext(c.RequestContext(), "order created", "id", id)
//
// # Dynamic Log Levels
//
//	logger.SetLevel(logging.LevelDebug)
//
// # Sensitive Data Redaction
//
// Values under the keys password, token, secret, api_key and authorization
// are replaced before they reach the handler. WithReplaceAttr adds more.
package logging
