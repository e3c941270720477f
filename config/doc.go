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

// Package config loads routecore settings from files and the environment
// and turns them into options for the router, logging, metrics and tracing
// packages.
//
// # Sources
//
// Sources are applied in order; a later source overrides keys set by an
// earlier one, key by key. Anything no source sets keeps its value from
// Default. Unknown keys are rejected.
//
//	cfg, err := config.Load(ctx,
//	    config.WithFile("routecore.yaml"),
//	    config.WithEnv("ROUTECORE_"),
//	)
//	if err != nil {
//	    return err
//	}
//	logger := logging.MustNew(cfg.LoggingOptions()...)
//	r := router.MustNew(cfg.RouterOptions(logger.Logger())...)
//	rec, err := cfg.NewMetrics(r) // nil when metrics.enabled is false
//	if err != nil {
//	    return err
//	}
//	tr, err := tracing.New(ctx, cfg.TracingOptions()...)
//
// File formats are chosen by extension: .yaml and .yml, .toml, .json.
//
// # Environment Variables
//
// With prefix "ROUTECORE_", a variable names a section and then a key:
//
//	ROUTECORE_ROUTER_TRAILING_SLASH=remove    -> router.trailing_slash
//	ROUTECORE_TRACING_SAMPLE_RATE=0.1         -> tracing.sample_rate
//
// The first word after the prefix selects the section (router, logging,
// metrics, tracing); the rest, lowercased, is the key.
//
// # Document Layout
//
//	router:
//	  trailing_slash: strict        # strict | remove | redirect
//	  bloom_false_positive_rate: 0.01
//	  bloom_hash_functions: 0       # 0 derives k from the rate
//	  pool_warmup: 0
//	  unescape_path_values: true
//	  problem_format: rfc9457       # rfc9457 | simple
//	  problem_base_url: ""
//	logging:
//	  level: info
//	  format: json                  # json | text
//	  service: ""
//	  version: ""
//	  environment: ""
//	  add_source: false
//	metrics:
//	  enabled: true
//	  path: /metrics                # mounted for prometheus only
//	  exporter: prometheus          # prometheus | stdout | otlp
//	  endpoint: ""
//	  export_interval: 30s          # push exporters
//	tracing:
//	  enabled: false                # false drops spans whatever the exporter
//	  exporter: noop                # noop | stdout | otlp | otlp-grpc
//	  endpoint: ""
//	  sample_rate: 1
package config
