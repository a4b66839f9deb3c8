// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import "errors"

// ErrBranchNotPowerOfTwo, ErrBranchMisaligned, ErrBranchOutOfRange,
// and ErrBranchTooLarge are the validation failures SetBranch and
// ClearBranch can return. All of them leave the Bitmap unmodified.
var (
	ErrBranchNotPowerOfTwo = errors.New("bitmaptree: branch size is not a power of two")
	ErrBranchMisaligned    = errors.New("bitmaptree: branch offset is not a multiple of size")
	ErrBranchOutOfRange    = errors.New("bitmaptree: branch offset+size exceeds the universe")
	ErrBranchTooLarge      = errors.New("bitmaptree: branch size exceeds the universe")
)

// SetBranch sets every bit in the aligned, power-of-two range
// [offset, offset+size) to 1 in constant time per collapsed subtree,
// regardless of how many bits the range covers. A size of 0 means the
// whole Bitmap. It returns an error, with no mutation, if size is not
// a power of two, offset is not a multiple of size, or the range does
// not fit inside the universe.
func (b *Bitmap) SetBranch(offset, size uint64) error {
	return b.applyBranch(offset, size, sentinelFull)
}

// ClearBranch is SetBranch's mirror image: it clears every bit in the
// aligned range to 0. A size of 0 means the whole Bitmap.
func (b *Bitmap) ClearBranch(offset, size uint64) error {
	return b.applyBranch(offset, size, sentinelEmpty)
}

func (b *Bitmap) applyBranch(offset, size uint64, v slotKind) error {
	if size == 0 {
		size = b.size
		if offset == 0 && size == 0 {
			// The whole 2^64 universe: free the existing tree and
			// install the sentinel directly as the root.
			if b.top.kind == allocated {
				freeTree(b.top.n, b.pool)
			}
			b.top = slot{kind: v}
			return nil
		}
	}
	if size == 0 {
		// Only reachable when the universe itself is 2^64 and a
		// nonzero offset was requested with size == 0: there is no
		// "whole bitmap" size to substitute that isn't also 0.
		return ErrBranchNotPowerOfTwo
	}
	if b.size > 0 && size > b.size {
		return ErrBranchTooLarge
	}

	var level uint8
	m := uint64(1)
	for size != m {
		if size < m || m == 0 {
			return ErrBranchNotPowerOfTwo
		}
		m <<= 1
		level++
	}

	if offset%size != 0 {
		return ErrBranchMisaligned
	}

	if b.size == 0 {
		if offset > (^uint64(0) - size + 1) {
			return ErrBranchOutOfRange
		}
	} else if offset >= b.size || offset+size > b.size {
		return ErrBranchOutOfRange
	}

	b.top = setBranch(b.top, offset, b.levels, level, v, b.pool)
	return nil
}

// setBranch descends from the root toward the node whose subtree
// spans exactly 2^wantedLevel bits, expanding sentinels along the way
// and pruning on return exactly like setBit. Once the target subtree
// is reached, a wantedLevel of 6 or more collapses the whole subtree
// to v in one step; a wantedLevel below 6 means the target range lies
// inside a single leaf word, and only the bits it covers are touched.
func setBranch(s slot, offset uint64, level, wantedLevel uint8, v slotKind, pool *nodePool) slot {
	if s.kind == v {
		return s
	}

	var n *node
	if s.kind != allocated {
		n = expandItem(pool, level, s.kind)
	} else {
		n = s.n
	}

	if level > 0 && int(level)+6 > int(wantedLevel) {
		bitmask := uint64(1) << (level + 5)
		if offset&bitmask != 0 {
			n.one = setBranch(n.one, offset, level-1, wantedLevel, v, pool)
		} else {
			n.zero = setBranch(n.zero, offset, level-1, wantedLevel, v, pool)
		}
		if n.zero.kind == v && n.one.kind == v {
			pool.put(n)
			return slot{kind: v}
		}
		return slot{kind: allocated, n: n}
	}

	// The target subtree has been reached.
	if wantedLevel >= 6 {
		freeTree(n, pool)
		return slot{kind: v}
	}

	// wantedLevel < 6: the target lies inside this single leaf.
	width := uint64(1) << wantedLevel
	mask := (uint64(1) << width) - 1
	mask <<= offset & 0x3f

	if v == sentinelFull {
		n.bits |= mask
		if n.bits == ^uint64(0) {
			pool.put(n)
			return slot{kind: sentinelFull}
		}
	} else {
		n.bits &^= mask
		if n.bits == 0 {
			pool.put(n)
			return slot{kind: sentinelEmpty}
		}
	}
	return slot{kind: allocated, n: n}
}
