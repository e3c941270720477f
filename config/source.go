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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rivaas.dev/routecore/config/codec"
)

// Source loads one layer of configuration as a nested map.
type Source interface {
	// Name identifies the source in errors.
	Name() string
	Load(ctx context.Context) (map[string]any, error)
}

// extensionFormats maps file extensions to codec types.
var extensionFormats = map[string]codec.Type{
	".yaml": codec.TypeYAML,
	".yml":  codec.TypeYAML,
	".json": codec.TypeJSON,
	".toml": codec.TypeTOML,
}

func detectFormat(path string) (codec.Type, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}
	return "", fmt.Errorf("cannot detect format from extension %q", ext)
}

// document is a file or in-memory source.
type document struct {
	name   string
	path   string
	data   []byte
	format codec.Type
}

func (d *document) Name() string { return d.name }

func (d *document) Load(context.Context) (map[string]any, error) {
	data := d.data
	if d.path != "" {
		var err error
		if data, err = os.ReadFile(d.path); err != nil {
			return nil, fmt.Errorf("failed to read file: %w", err)
		}
	}

	c, err := codec.Get(d.format)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := c.Decode(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", d.format, err)
	}
	return m, nil
}

// sections are the top-level keys environment variables can address.
var sections = map[string]bool{
	"router":  true,
	"logging": true,
	"metrics": true,
	"tracing": true,
}

// envSource reads variables that start with prefix.
type envSource struct {
	prefix  string
	environ func() []string
}

func (e *envSource) Name() string { return "env:" + e.prefix }

// Load maps PREFIX_SECTION_SOME_KEY=v to {"section": {"some_key": v}}.
// Variables whose first word is not a known section are ignored.
func (e *envSource) Load(context.Context) (map[string]any, error) {
	out := make(map[string]any)
	for _, kv := range e.environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		rest, ok := strings.CutPrefix(name, e.prefix)
		if !ok {
			continue
		}
		section, key, ok := strings.Cut(strings.ToLower(rest), "_")
		if !ok || key == "" || !sections[section] {
			continue
		}

		m, _ := out[section].(map[string]any)
		if m == nil {
			m = make(map[string]any)
			out[section] = m
		}
		m[key] = strings.TrimSpace(value)
	}
	return out, nil
}
