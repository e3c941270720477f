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

package router

import (
	"sync"
	"sync/atomic"
)

// PoolStats holds context pool counters.
type PoolStats struct {
	Acquires       uint64 // Acquire calls
	Releases       uint64 // successful Release calls
	Allocs         uint64 // contexts created by the pool, warmup included
	DoubleReleases uint64 // Release calls on a context not in use
	InFlight       int64  // Acquires - Releases
}

// contextPool hands out reset Contexts. It is sync.Pool-backed, so Acquire
// and Release are safe from any number of goroutines.
//
// Ownership is tracked with Context.inUse: Acquire sets it, Release clears
// it with a compare-and-swap so a second Release of the same acquisition
// is detected and ignored. A stale Release that arrives after the context
// was acquired again cannot be told apart from a legitimate one.
type contextPool struct {
	pool     sync.Pool
	router   *Router
	paramCap int // set at freeze, before the first Acquire

	acquires       atomic.Uint64
	releases       atomic.Uint64
	allocs         atomic.Uint64
	doubleReleases atomic.Uint64
}

func newContextPool(r *Router) *contextPool {
	p := &contextPool{router: r}
	p.pool.New = func() any {
		return p.newContext()
	}
	return p
}

func (p *contextPool) newContext() *Context {
	p.allocs.Add(1)
	return &Context{
		router: p.router,
		params: make([]Param, 0, p.paramCap),
	}
}

// Acquire returns a context with no parameters and the chain cursor at the
// start. The params backing array is reused.
func (p *contextPool) Acquire() *Context {
	c, ok := p.pool.Get().(*Context)
	if !ok {
		panic("router: pool corruption - context pool returned non-Context type")
	}
	if cap(c.params) < p.paramCap {
		c.params = make([]Param, 0, p.paramCap)
	}
	c.params = c.params[:0]
	c.index = 0
	c.inUse.Store(true)
	p.acquires.Add(1)
	return c
}

// Release returns c to the pool. It reports false, and does nothing else,
// when c is not currently acquired.
func (p *contextPool) Release(c *Context) bool {
	if !c.inUse.CompareAndSwap(true, false) {
		p.doubleReleases.Add(1)
		return false
	}
	c.reset()
	p.releases.Add(1)
	p.pool.Put(c)
	return true
}

// Warmup allocates n contexts and puts them in the pool.
//
// Note: sync.Pool may drop items on GC; warmup only helps the first burst.
func (p *contextPool) Warmup(n int) {
	if n <= 0 {
		return
	}
	batch := make([]*Context, n)
	for i := range batch {
		batch[i] = p.newContext()
	}
	for _, c := range batch {
		p.pool.Put(c)
	}
}

// Stats returns a snapshot of the pool counters.
func (p *contextPool) Stats() PoolStats {
	releases := p.releases.Load() // before acquires so InFlight never goes negative
	acquires := p.acquires.Load()
	return PoolStats{
		Acquires:       acquires,
		Releases:       releases,
		Allocs:         p.allocs.Load(),
		DoubleReleases: p.doubleReleases.Load(),
		InFlight:       int64(acquires) - int64(releases),
	}
}
