// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import (
	"sync"
	"sync/atomic"
)

// nodePool is a type-safe wrapper around sync.Pool, specialized for
// managing *node instances. Go has no manual free: every slot-pruning
// return path that the C library frees explicitly instead returns its
// node here, so the allocator churn of repeated expand/prune cycles
// (every set_bit/clear_bit call potentially expands a sentinel and
// then immediately prunes it back) gets reused rather than re-GC'd.
//
// TODO: remove the live/total counters once the pool's hit rate has
// been profiled against a real IPAM workload.
type nodePool struct {
	sync.Pool

	totalAllocated atomic.Int64
	currentLive    atomic.Int64
}

func newNodePool() *nodePool {
	p := &nodePool{}
	p.New = func() any {
		p.totalAllocated.Add(1)
		return new(node)
	}
	return p
}

// get retrieves a *node from the pool, or allocates one if none is
// free. The returned node is always zeroed.
func (p *nodePool) get() *node {
	if p == nil {
		return new(node)
	}
	p.currentLive.Add(1)
	return p.Pool.Get().(*node)
}

// put returns n to the pool for reuse, after resetting its fields.
func (p *nodePool) put(n *node) {
	if p == nil {
		return
	}
	p.currentLive.Add(-1)
	n.reset()
	p.Pool.Put(n)
}

// PoolStats reports the number of currently live (checked-out) nodes
// and the total number ever allocated for this Bitmap. It is a
// debugging/tuning aid, not part of the compressed-trie contract.
func (b *Bitmap) PoolStats() (live, total int64) {
	if b == nil || b.pool == nil {
		return 0, 0
	}
	return b.pool.currentLive.Load(), b.pool.totalAllocated.Load()
}
