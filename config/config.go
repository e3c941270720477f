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

package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"

	"rivaas.dev/routecore/config/codec"
	rerrors "rivaas.dev/routecore/errors"
	"rivaas.dev/routecore/logging"
	"rivaas.dev/routecore/metrics"
	"rivaas.dev/routecore/router"
	"rivaas.dev/routecore/tracing"
)

// Config is the complete routecore configuration.
type Config struct {
	Router  RouterConfig  `config:"router"`
	Logging LoggingConfig `config:"logging"`
	Metrics MetricsConfig `config:"metrics"`
	Tracing TracingConfig `config:"tracing"`
}

// RouterConfig holds router construction settings.
type RouterConfig struct {
	TrailingSlash          string  `config:"trailing_slash"`
	BloomFalsePositiveRate float64 `config:"bloom_false_positive_rate"`
	BloomHashFunctions     int     `config:"bloom_hash_functions"`
	PoolWarmup             int     `config:"pool_warmup"`
	UnescapePathValues     bool    `config:"unescape_path_values"`
	ProblemFormat          string  `config:"problem_format"`
	ProblemBaseURL         string  `config:"problem_base_url"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `config:"level"`
	Format      string `config:"format"`
	Service     string `config:"service"`
	Version     string `config:"version"`
	Environment string `config:"environment"`
	AddSource   bool   `config:"add_source"`
}

// MetricsConfig holds metrics settings. Path is only mounted for the
// prometheus exporter.
type MetricsConfig struct {
	Enabled        bool          `config:"enabled"`
	Path           string        `config:"path"`
	Exporter       string        `config:"exporter"`
	Endpoint       string        `config:"endpoint"`
	ExportInterval time.Duration `config:"export_interval"`
}

// TracingConfig holds tracing settings. When Enabled is false the
// exporter is ignored and spans are dropped.
type TracingConfig struct {
	Enabled    bool    `config:"enabled"`
	Exporter   string  `config:"exporter"`
	Endpoint   string  `config:"endpoint"`
	SampleRate float64 `config:"sample_rate"`
}

// Default returns the configuration used when no source sets a key.
func Default() *Config {
	return &Config{
		Router: RouterConfig{
			TrailingSlash:          router.TrailingSlashStrict.String(),
			BloomFalsePositiveRate: 0.01,
			UnescapePathValues:     true,
			ProblemFormat:          "rfc9457",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: string(logging.JSONHandler),
		},
		Metrics: MetricsConfig{
			Enabled:        true,
			Path:           "/metrics",
			Exporter:       string(metrics.PrometheusProvider),
			ExportInterval: 30 * time.Second,
		},
		Tracing: TracingConfig{
			Exporter:   "noop",
			SampleRate: 1,
		},
	}
}

// Load reads every source in order, layers them over Default and
// validates the result. Validation failures wrap ErrInvalidConfig.
func Load(ctx context.Context, opts ...Option) (*Config, error) {
	if ctx == nil {
		return nil, errors.New("context cannot be nil")
	}
	l, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any)
	for _, src := range l.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		values, err := src.Load(ctx)
		if err != nil {
			return nil, newError(src.Name(), "load", err)
		}
		if err := mergeLayer(merged, normalizeKeys(values)); err != nil {
			return nil, newError(src.Name(), "merge", err)
		}
	}

	cfg := Default()
	if err := decode(merged, cfg); err != nil {
		return nil, newError("decode", "bind", fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(ctx context.Context, opts ...Option) *Config {
	cfg, err := Load(ctx, opts...)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// normalizeKeys lowercases keys at every level so files and environment
// variables agree.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}
	return out
}

// mergeLayer overlays src on dst. Sections are merged key by key; any
// other value replaces what dst held.
func mergeLayer(dst, src map[string]any) error {
	for k, v := range src {
		sv, srcIsMap := v.(map[string]any)
		dv, dstIsMap := dst[k].(map[string]any)
		if !srcIsMap || !dstIsMap {
			if srcIsMap {
				v = maps.Clone(sv)
			}
			dst[k] = v
			continue
		}
		if err := mergo.Map(&dv, sv, mergo.WithOverride); err != nil {
			return fmt.Errorf("section %q: %w", k, err)
		}
		dst[k] = dv
	}
	return nil
}

func decode(values map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(values)
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, fmt.Errorf("%s: %w", field, err))
	}

	if _, err := router.ParseTrailingSlashPolicy(c.Router.TrailingSlash); err != nil {
		fail("router.trailing_slash", err)
	}
	if p := c.Router.BloomFalsePositiveRate; p <= 0 || p >= 1 {
		fail("router.bloom_false_positive_rate", fmt.Errorf("must be in (0, 1), got %v", p))
	}
	if c.Router.BloomHashFunctions < 0 {
		fail("router.bloom_hash_functions", fmt.Errorf("must not be negative, got %d", c.Router.BloomHashFunctions))
	}
	if c.Router.PoolWarmup < 0 {
		fail("router.pool_warmup", fmt.Errorf("must not be negative, got %d", c.Router.PoolWarmup))
	}
	switch c.Router.ProblemFormat {
	case "rfc9457", "simple":
	default:
		fail("router.problem_format", fmt.Errorf("unknown format %q", c.Router.ProblemFormat))
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		fail("logging.level", err)
	}
	switch logging.HandlerType(c.Logging.Format) {
	case logging.JSONHandler, logging.TextHandler:
	default:
		fail("logging.format", fmt.Errorf("unknown format %q", c.Logging.Format))
	}

	switch metrics.Provider(c.Metrics.Exporter) {
	case metrics.PrometheusProvider:
		if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
			fail("metrics.path", fmt.Errorf("must start with '/', got %q", c.Metrics.Path))
		}
	case metrics.StdoutProvider, metrics.OTLPProvider:
		if c.Metrics.ExportInterval <= 0 {
			fail("metrics.export_interval", fmt.Errorf("must be positive, got %s", c.Metrics.ExportInterval))
		}
	default:
		fail("metrics.exporter", fmt.Errorf("unknown exporter %q", c.Metrics.Exporter))
	}

	switch c.Tracing.Exporter {
	case "noop", "stdout", "otlp", "otlp-grpc":
	default:
		fail("tracing.exporter", fmt.Errorf("unknown exporter %q", c.Tracing.Exporter))
	}
	if r := c.Tracing.SampleRate; r < 0 || r > 1 {
		fail("tracing.sample_rate", fmt.Errorf("must be in [0, 1], got %v", r))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// RouterOptions converts the router section to router options. logger may
// be nil.
func (c *Config) RouterOptions(logger *slog.Logger) []router.Option {
	policy, _ := router.ParseTrailingSlashPolicy(c.Router.TrailingSlash)
	opts := []router.Option{
		router.WithTrailingSlash(policy),
		router.WithBloomFalsePositiveRate(c.Router.BloomFalsePositiveRate),
		router.WithUnescapePathValues(c.Router.UnescapePathValues),
	}
	if c.Router.BloomHashFunctions > 0 {
		opts = append(opts, router.WithBloomHashFunctions(c.Router.BloomHashFunctions))
	}
	if c.Router.PoolWarmup > 0 {
		opts = append(opts, router.WithPoolWarmup(c.Router.PoolWarmup))
	}
	if c.Router.ProblemFormat == "simple" {
		opts = append(opts, router.WithProblemFormatter(rerrors.NewSimple()))
	} else if c.Router.ProblemBaseURL != "" {
		opts = append(opts, router.WithProblemFormatter(rerrors.NewRFC9457(c.Router.ProblemBaseURL)))
	}
	if logger != nil {
		opts = append(opts, router.WithLogger(logger))
	}
	return opts
}

// LoggingOptions converts the logging section to logging options.
func (c *Config) LoggingOptions() []logging.Option {
	level, _ := logging.ParseLevel(c.Logging.Level)
	return []logging.Option{
		logging.WithHandlerType(logging.HandlerType(c.Logging.Format)),
		logging.WithLevel(level),
		logging.WithServiceName(c.Logging.Service),
		logging.WithServiceVersion(c.Logging.Version),
		logging.WithEnvironment(c.Logging.Environment),
		logging.WithSource(c.Logging.AddSource),
	}
}

// MetricsOptions converts the metrics section, taking the service name and
// version from the logging section. It ignores metrics.enabled; NewMetrics
// honors it.
func (c *Config) MetricsOptions() []metrics.Option {
	var opts []metrics.Option
	if c.Logging.Service != "" {
		opts = append(opts, metrics.WithServiceName(c.Logging.Service))
	}
	if c.Logging.Version != "" {
		opts = append(opts, metrics.WithServiceVersion(c.Logging.Version))
	}
	switch metrics.Provider(c.Metrics.Exporter) {
	case metrics.StdoutProvider:
		opts = append(opts, metrics.WithStdout(nil), metrics.WithExportInterval(c.Metrics.ExportInterval))
	case metrics.OTLPProvider:
		opts = append(opts, metrics.WithOTLP(c.Metrics.Endpoint), metrics.WithExportInterval(c.Metrics.ExportInterval))
	}
	return opts
}

// NewMetrics builds the recorder the metrics section describes and, for
// the prometheus exporter, mounts its scrape handler at metrics.path on rt.
// opts are applied after the configured ones. It returns a nil Recorder
// and no error when metrics are disabled.
func (c *Config) NewMetrics(rt *router.Router, opts ...metrics.Option) (*metrics.Recorder, error) {
	if !c.Metrics.Enabled {
		return nil, nil
	}
	rec, err := metrics.New(append(c.MetricsOptions(), opts...)...)
	if err != nil {
		return nil, newError("metrics", "new", err)
	}
	if rt != nil {
		rec.Mount(rt, c.Metrics.Path)
	}
	return rec, nil
}

// TracingOptions converts the tracing section, taking the service name and
// version from the logging section. With tracing disabled no exporter is
// selected, so tracing.New yields a noop provider.
func (c *Config) TracingOptions() []tracing.Option {
	opts := []tracing.Option{tracing.WithSampleRate(c.Tracing.SampleRate)}
	if c.Logging.Service != "" {
		opts = append(opts, tracing.WithServiceName(c.Logging.Service))
	}
	if c.Logging.Version != "" {
		opts = append(opts, tracing.WithServiceVersion(c.Logging.Version))
	}
	if !c.Tracing.Enabled {
		return opts
	}
	switch c.Tracing.Exporter {
	case "stdout":
		opts = append(opts, tracing.WithStdout(nil))
	case "otlp":
		opts = append(opts, tracing.WithOTLP(c.Tracing.Endpoint))
	case "otlp-grpc":
		opts = append(opts, tracing.WithOTLPGRPC(c.Tracing.Endpoint))
	}
	return opts
}

// Encode renders c as a document in format, using the same keys Load
// reads.
func (c *Config) Encode(format codec.Type) ([]byte, error) {
	var m map[string]any
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{TagName: "config", Result: &m})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(c); err != nil {
		return nil, newError("encode", "flatten", err)
	}

	cd, err := codec.Get(format)
	if err != nil {
		return nil, newError("encode", "codec", err)
	}
	data, err := cd.Encode(m)
	if err != nil {
		return nil, newError("encode", string(format), err)
	}
	return data, nil
}
