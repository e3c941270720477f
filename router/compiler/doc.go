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

// Package compiler provides the compiled static-route tables used by the
// router after it freezes.
//
// Each HTTP method gets one StaticTable: an exact-path map for static
// routes plus a bloom filter over the same keys. The router consults the
// table before walking its radix tree:
//
//  1. If the method has no dynamic routes and the bloom filter reports the
//     path absent, the request is a definite 404 and the tree is skipped.
//  2. If the exact-path map holds the path, that route wins.
//  3. Otherwise the tree is walked.
//
// # Bloom Filter
//
// The filter is sized from the number of static routes n and the target
// false positive rate p:
//
//	m = ceil(-n * ln(p) / (ln 2)^2)   bits, at least 64
//	k = round(m / n * ln 2)           hash functions, clamped to [1, 16]
//
// Bit positions use double hashing over one xxhash digest, so a lookup
// hashes the path exactly once regardless of k.
//
// # Import Cycle Prevention
//
// StaticTable is generic over the stored route type. The router package
// instantiates it with its own *Route and compiler never imports router.
//
// # Thread Safety
//
// TableBuilder is single-threaded. StaticTable and BloomFilter are
// read-only after Build and safe for concurrent readers.
package compiler
