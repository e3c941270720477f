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

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultFalsePositiveRate is the target false positive rate used when
	// the caller does not supply one.
	DefaultFalsePositiveRate = 0.01

	// minBloomBits keeps tiny filters from degenerating into a single word
	// that every path saturates.
	minBloomBits = 64

	// maxHashFuncs caps k. Past this point extra bit lookups cost more than the
	// false positives they remove.
	maxHashFuncs = 16
)

// BloomFilter is a fixed-size probabilistic set used to reject paths that
// were never registered before any tree traversal takes place.
//
// A bloom filter can answer two things:
//   - "Definitely NOT in the set" (always correct)
//   - "Possibly in the set" (may be a false positive)
//
// Positions are derived with double hashing over a single 64-bit xxhash
// digest: h_i = h1 + i*h2 (mod m). The filter is written only while the
// router is being compiled and is read-only afterwards, so Test is safe for
// concurrent use without locking.
type BloomFilter struct {
	bits []uint64 // Bit array (each uint64 holds 64 bits)
	size uint64   // Total number of bits (m)
	k    int      // Number of bit positions per element
	n    int      // Number of elements added
}

// OptimalSize returns the number of bits m and hash functions k for n expected
// elements at false positive rate p:
//
//	m = ceil(-n * ln(p) / (ln 2)^2)
//	k = round(m / n * ln 2)
//
// Invalid inputs fall back to DefaultFalsePositiveRate and n = 1.
func OptimalSize(n int, p float64) (uint64, int) {
	if n < 1 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = DefaultFalsePositiveRate
	}

	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	size := max(uint64(m), minBloomBits)

	k := int(math.Round(float64(size) / float64(n) * math.Ln2))
	k = min(max(k, 1), maxHashFuncs)

	return size, k
}

// NewBloomFilter creates a bloom filter with size bits and k hash functions.
// A zero size is raised to the minimum; k is clamped to [1, 16].
func NewBloomFilter(size uint64, k int) *BloomFilter {
	size = max(size, minBloomBits)
	k = min(max(k, 1), maxHashFuncs)

	return &BloomFilter{
		bits: make([]uint64, (size+63)/64), // Round up to nearest 64-bit boundary
		size: size,
		k:    k,
	}
}

// NewBloomFilterFor creates a bloom filter sized for n elements at false
// positive rate p. See OptimalSize.
func NewBloomFilterFor(n int, p float64) *BloomFilter {
	size, k := OptimalSize(n, p)
	return NewBloomFilter(size, k)
}

// split derives the two double-hashing seeds from one digest. h2 is forced
// odd so consecutive positions never collapse onto the same bit.
func split(sum uint64) (uint64, uint64) {
	return sum & 0xffffffff, (sum >> 32) | 1
}

// Add inserts s into the filter.
func (bf *BloomFilter) Add(s string) {
	h1, h2 := split(xxhash.Sum64String(s))
	for i := range bf.k {
		pos := (h1 + uint64(i)*h2) % bf.size
		bf.bits[pos>>6] |= 1 << (pos & 63)
	}
	bf.n++
}

// Test reports whether s might be in the filter. A false result is exact.
//
// The loop exits on the first unset bit, which is the common case for the
// 404 traffic the filter exists for.
func (bf *BloomFilter) Test(s string) bool {
	return bf.TestHash(xxhash.Sum64String(s))
}

// TestHash is Test for a caller that already holds the xxhash digest of
// the element.
func (bf *BloomFilter) TestHash(sum uint64) bool {
	h1, h2 := split(sum)
	for i := range bf.k {
		pos := (h1 + uint64(i)*h2) % bf.size
		if bf.bits[pos>>6]&(1<<(pos&63)) == 0 {
			return false
		}
	}

	return true
}

// Size returns the number of bits in the filter.
func (bf *BloomFilter) Size() uint64 { return bf.size }

// HashFunctions returns k, the number of bit positions per element.
func (bf *BloomFilter) HashFunctions() int { return bf.k }

// Len returns the number of elements added.
func (bf *BloomFilter) Len() int { return bf.n }

// EstimatedFalsePositiveRate returns (1 - e^(-k*n/m))^k for the current
// fill level.
func (bf *BloomFilter) EstimatedFalsePositiveRate() float64 {
	if bf.n == 0 {
		return 0
	}
	exp := -float64(bf.k) * float64(bf.n) / float64(bf.size)
	return math.Pow(1-math.Exp(exp), float64(bf.k))
}
