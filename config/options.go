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
	"errors"
	"fmt"
	"os"

	"rivaas.dev/routecore/config/codec"
)

// Option adds a source to Load.
type Option func(l *loader) error

type loader struct {
	sources []Source
}

// WithFile loads a file whose format is detected from its extension.
// The path is expanded with os.ExpandEnv.
func WithFile(path string) Option {
	return func(l *loader) error {
		path = os.ExpandEnv(path)
		format, err := detectFormat(path)
		if err != nil {
			return newError("file:"+path, "detect-format", err)
		}
		l.sources = append(l.sources, &document{name: "file:" + path, path: path, format: format})
		return nil
	}
}

// WithFileAs loads a file in the given format regardless of extension.
func WithFileAs(path string, format codec.Type) Option {
	return func(l *loader) error {
		path = os.ExpandEnv(path)
		l.sources = append(l.sources, &document{name: "file:" + path, path: path, format: format})
		return nil
	}
}

// WithContent loads an in-memory document.
//
//	config.Load(ctx, config.WithContent(embedded, codec.TypeYAML))
func WithContent(data []byte, format codec.Type) Option {
	return func(l *loader) error {
		l.sources = append(l.sources, &document{name: "content:" + string(format), data: data, format: format})
		return nil
	}
}

// WithEnv loads variables starting with prefix (e.g. "ROUTECORE_").
func WithEnv(prefix string) Option {
	return func(l *loader) error {
		if prefix == "" {
			return errors.New("env prefix cannot be empty")
		}
		l.sources = append(l.sources, &envSource{prefix: prefix, environ: os.Environ})
		return nil
	}
}

// WithSource adds a custom source.
func WithSource(src Source) Option {
	return func(l *loader) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		l.sources = append(l.sources, src)
		return nil
	}
}

func applyOptions(opts []Option) (*loader, error) {
	l := &loader{}
	var errs error
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		errs = errors.Join(errs, opt(l))
	}
	if errs != nil {
		return nil, fmt.Errorf("config options: %w", errs)
	}
	return l, nil
}
