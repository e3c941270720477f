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

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// HandlerType represents the type of logging handler.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
)

// Level represents log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// Logger is a configured slog logger carrying service metadata.
//
// All methods are safe for concurrent use. The level can be changed at
// runtime with SetLevel; everything else is fixed by New.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       slog.LevelVar

	// Added to every record when non-empty.
	serviceName    string
	serviceVersion string
	environment    string

	addSource        bool
	traceCorrelation bool
	replaceAttr      func(groups []string, a slog.Attr) slog.Attr

	customLogger *slog.Logger
	useCustom    bool

	registerGlobal bool

	slogger *slog.Logger
}

// Option is a functional option for configuring the logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	l := &Logger{
		handlerType:      JSONHandler,
		output:           os.Stdout,
		traceCorrelation: true,
	}
	l.level.Set(LevelInfo)
	return l
}

// New creates a Logger with the given options.
//
// New does not touch the global slog default unless WithGlobalLogger is
// passed, so several loggers can coexist in one process.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l.slogger = l.build()
	if l.registerGlobal {
		slog.SetDefault(l.slogger)
	}
	return l, nil
}

// MustNew creates a Logger or panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return l
}

// Validate checks if the configuration is valid.
func (l *Logger) Validate() error {
	if l.useCustom {
		if l.customLogger == nil {
			return ErrNilLogger
		}
		return nil
	}
	if l.output == nil {
		return ErrNilOutput
	}
	switch l.handlerType {
	case JSONHandler, TextHandler:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHandler, l.handlerType)
	}
	return nil
}

// build assembles the handler stack: base handler, then trace
// correlation, then the service attributes.
func (l *Logger) build() *slog.Logger {
	if l.useCustom {
		return l.customLogger
	}

	opts := &slog.HandlerOptions{
		Level:       &l.level,
		AddSource:   l.addSource,
		ReplaceAttr: l.buildReplaceAttr(),
	}

	var h slog.Handler
	if l.handlerType == TextHandler {
		h = slog.NewTextHandler(l.output, opts)
	} else {
		h = slog.NewJSONHandler(l.output, opts)
	}
	if l.traceCorrelation {
		h = NewTraceHandler(h)
	}

	var attrs []slog.Attr
	if l.serviceName != "" {
		attrs = append(attrs, slog.String("service", l.serviceName))
	}
	if l.serviceVersion != "" {
		attrs = append(attrs, slog.String("version", l.serviceVersion))
	}
	if l.environment != "" {
		attrs = append(attrs, slog.String("env", l.environment))
	}
	if len(attrs) > 0 {
		h = h.WithAttrs(attrs)
	}

	return slog.New(h)
}

// redactedKeys are replaced in every record regardless of WithReplaceAttr.
var redactedKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"secret":        true,
	"api_key":       true,
	"authorization": true,
}

func (l *Logger) buildReplaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if redactedKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, "***REDACTED***")
		}
		if l.replaceAttr != nil {
			return l.replaceAttr(groups, a)
		}
		return a
	}
}

// Logger returns the underlying slog.Logger.
func (l *Logger) Logger() *slog.Logger {
	return l.slogger
}

// With returns a slog.Logger with additional attributes.
func (l *Logger) With(args ...any) *slog.Logger {
	return l.slogger.With(args...)
}

// WithGroup returns a slog.Logger that nests later attributes under name.
func (l *Logger) WithGroup(name string) *slog.Logger {
	return l.slogger.WithGroup(name)
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) { l.slogger.Debug(msg, args...) }

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) { l.slogger.Info(msg, args...) }

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) { l.slogger.Warn(msg, args...) }

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) { l.slogger.Error(msg, args...) }

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level Level) error {
	if l.useCustom {
		return ErrCannotChangeLevel
	}
	l.level.Set(level)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() Level {
	return l.level.Level()
}

// ServiceName returns the configured service name.
func (l *Logger) ServiceName() string { return l.serviceName }

// ServiceVersion returns the configured service version.
func (l *Logger) ServiceVersion() string { return l.serviceVersion }

// Environment returns the configured environment.
func (l *Logger) Environment() string { return l.environment }

// ParseLevel converts a level name (debug, info, warn, error; any case)
// to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
}
