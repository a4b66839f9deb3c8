// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import (
	"math/bits"

	"github.com/dolthub/maphash"
)

// digestKey is the comparable value hashed at every step of Digest's
// tree walk. Folding level and kind into the key, not just bits,
// keeps a leaf at one level from colliding with an interior node's
// folded child hash at another.
type digestKey struct {
	level uint8
	kind  slotKind
	bits  uint64
}

var digestHasher = maphash.NewHasher[digestKey]()

// Digest returns a fast, process-local structural fingerprint of the
// Bitmap. Two Bitmaps with the same Digest are almost certainly equal
// under Compare; two with different Digests are definitely not equal.
//
// Digest is not a replacement for Compare and it is not stable across
// process restarts: it is built on [hash/maphash] via
// github.com/dolthub/maphash, which reseeds its hash per process by
// design. It exists purely as a cheap same-process cache key — e.g.
// "has this Bitmap changed since I last looked at it" — where paying
// for a full Compare on every check would be wasteful.
func (b *Bitmap) Digest() uint64 {
	return digest(b.top, b.levels)
}

func digest(s slot, level uint8) uint64 {
	switch s.kind {
	case sentinelEmpty, sentinelFull:
		return digestHasher.Hash(digestKey{level: level, kind: s.kind})
	}

	n := s.n
	if n.level == 0 {
		return digestHasher.Hash(digestKey{level: 0, kind: allocated, bits: n.bits})
	}

	zero := digest(n.zero, n.level-1)
	one := digest(n.one, n.level-1)
	folded := zero ^ bits.RotateLeft64(one, 1)
	return digestHasher.Hash(digestKey{level: n.level, kind: allocated, bits: folded})
}
