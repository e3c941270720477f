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

package compiler

// StaticTable is the compiled, read-only view of one method's static routes.
//
// It holds an exact-path map and a bloom filter over the same keys. The
// table is built once when the router freezes and never written again, so
// every method may be called concurrently without synchronization.
//
// T is the router's route type; keeping the table generic lets the router
// package import compiler without compiler importing the router.
type StaticTable[T any] struct {
	routes     map[string]T
	bloom      *BloomFilter // nil when the method has no static routes
	hasDynamic bool
}

// TableBuilder collects routes for a single method before compilation.
// It is not safe for concurrent use.
type TableBuilder[T any] struct {
	routes     map[string]T
	hasDynamic bool
	fpRate     float64
	hashFuncs  int
}

// NewTableBuilder creates a builder whose bloom filter targets fpRate.
// A non-zero hashFuncs overrides the derived k.
func NewTableBuilder[T any](fpRate float64, hashFuncs int) *TableBuilder[T] {
	return &TableBuilder[T]{
		routes:    make(map[string]T),
		fpRate:    fpRate,
		hashFuncs: hashFuncs,
	}
}

// AddStatic records a fully static path. A later call for the same path
// replaces the earlier value; the router rejects duplicates before this.
func (b *TableBuilder[T]) AddStatic(path string, value T) {
	b.routes[path] = value
}

// MarkDynamic records that the method has at least one parameter or
// wildcard route. Such methods cannot use the bloom filter to reject a
// path outright.
func (b *TableBuilder[T]) MarkDynamic() {
	b.hasDynamic = true
}

// Build compiles the collected routes into a StaticTable.
func (b *TableBuilder[T]) Build() *StaticTable[T] {
	t := &StaticTable[T]{
		routes:     make(map[string]T, len(b.routes)),
		hasDynamic: b.hasDynamic,
	}
	if len(b.routes) == 0 {
		return t
	}

	size, k := OptimalSize(len(b.routes), b.fpRate)
	if b.hashFuncs > 0 {
		k = b.hashFuncs
	}
	t.bloom = NewBloomFilter(size, k)

	for path, v := range b.routes {
		t.routes[path] = v
		t.bloom.Add(path)
	}

	return t
}

// Lookup returns the route registered for the exact path.
func (t *StaticTable[T]) Lookup(path string) (T, bool) {
	v, ok := t.routes[path]
	return v, ok
}

// MightContain reports whether path may be a registered static path.
// A false result is definitive.
func (t *StaticTable[T]) MightContain(path string) bool {
	if t.bloom == nil {
		return false
	}
	return t.bloom.Test(path)
}

// DefinitelyAbsent reports whether path can be rejected without walking
// the tree: the method has no dynamic routes and the bloom filter rules
// the path out.
func (t *StaticTable[T]) DefinitelyAbsent(path string) bool {
	return !t.hasDynamic && !t.MightContain(path)
}

// HasDynamic reports whether the method has parameter or wildcard routes.
func (t *StaticTable[T]) HasDynamic() bool { return t.hasDynamic }

// Len returns the number of static routes.
func (t *StaticTable[T]) Len() int { return len(t.routes) }

// Bloom returns the table's bloom filter, or nil.
func (t *StaticTable[T]) Bloom() *BloomFilter { return t.bloom }
