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

// Package codec encodes and decodes configuration documents.
//
// YAML, TOML and JSON codecs register themselves at init; Get returns the
// codec for a Type.
package codec

import (
	"fmt"
	"sync"
)

// Type identifies a document format.
type Type string

// Codec converts between encoded documents and Go values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

var (
	mu       sync.RWMutex
	registry = map[Type]Codec{}
)

// Register makes c available under t, replacing any earlier codec.
func Register(t Type, c Codec) {
	mu.Lock()
	defer mu.Unlock()
	registry[t] = c
}

// Get returns the codec registered under t.
func Get(t Type) (Codec, error) {
	mu.RLock()
	defer mu.RUnlock()
	c, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("codec %q not registered", t)
	}
	return c, nil
}
