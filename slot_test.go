// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import "testing"

func TestUlog2(t *testing.T) {
	t.Parallel()

	cases := []struct {
		x    uint64
		want uint8
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{3, 2},
		{7, 3},
		{1 << 63, 63},
		{(1 << 63) + 1, 64},
		{^uint64(0), 64},
	}

	for _, c := range cases {
		if got := ulog2(c.x); got != c.want {
			t.Errorf("ulog2(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}

func TestExpandItem(t *testing.T) {
	t.Parallel()
	pool := newNodePool()

	t.Run("interior from empty", func(t *testing.T) {
		n := expandItem(pool, 3, sentinelEmpty)
		if n.level != 3 {
			t.Fatalf("level = %d, want 3", n.level)
		}
		if n.zero.kind != sentinelEmpty || n.one.kind != sentinelEmpty {
			t.Fatalf("children = %v/%v, want EMPTY/EMPTY", n.zero.kind, n.one.kind)
		}
	})

	t.Run("interior from full", func(t *testing.T) {
		n := expandItem(pool, 3, sentinelFull)
		if n.zero.kind != sentinelFull || n.one.kind != sentinelFull {
			t.Fatalf("children = %v/%v, want FULL/FULL", n.zero.kind, n.one.kind)
		}
	})

	t.Run("leaf from empty", func(t *testing.T) {
		n := expandItem(pool, 0, sentinelEmpty)
		if n.bits != 0 {
			t.Fatalf("bits = %#x, want 0", n.bits)
		}
	})

	t.Run("leaf from full", func(t *testing.T) {
		n := expandItem(pool, 0, sentinelFull)
		if n.bits != ^uint64(0) {
			t.Fatalf("bits = %#x, want all-ones", n.bits)
		}
	})
}
