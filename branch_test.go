// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import (
	"errors"
	"testing"
)

// TestScenarioS3BranchOperations is spec scenario S3.
func TestScenarioS3BranchOperations(t *testing.T) {
	b := Create(256)

	if err := b.SetBranch(0, 3); err == nil {
		t.Error("SetBranch(0, 3): want error, got nil (3 is not a power of two)")
	}
	if err := b.SetBranch(17, 8); err == nil {
		t.Error("SetBranch(17, 8): want error, got nil (17 is not a multiple of 8)")
	}
	if err := b.SetBranch(256, 8); err == nil {
		t.Error("SetBranch(256, 8): want error, got nil (out of range)")
	}

	if err := b.SetBranch(0, 256); err != nil {
		t.Fatalf("SetBranch(0, 256): %v", err)
	}
	if b.CountOnes() != 256 {
		t.Errorf("CountOnes() after filling = %d, want 256", b.CountOnes())
	}
	if b.CountNodes() != 0 {
		t.Errorf("CountNodes() after filling = %d, want 0", b.CountNodes())
	}

	if err := b.ClearBranch(128, 128); err != nil {
		t.Fatalf("ClearBranch(128, 128): %v", err)
	}
	if b.CountOnes() != 128 {
		t.Errorf("CountOnes() = %d, want 128", b.CountOnes())
	}
	if b.CountNodes() != 1 {
		t.Errorf("CountNodes() = %d, want 1", b.CountNodes())
	}

	off, ok := b.ReserveBit()
	if !ok {
		t.Fatalf("ReserveBit failed")
	}
	if off != 128 {
		t.Errorf("ReserveBit() = %d, want 128", off)
	}
}

// TestScenarioS4SubLeafBranch is spec scenario S4: branch ranges
// narrower than a single leaf word.
func TestScenarioS4SubLeafBranch(t *testing.T) {
	b := Create(256)
	if err := b.SetBranch(0, 0); err != nil {
		t.Fatalf("SetBranch(0, 0): %v", err)
	}

	if err := b.ClearBranch(200, 8); err != nil {
		t.Fatalf("ClearBranch(200, 8): %v", err)
	}
	if err := b.ClearBranch(248, 4); err != nil {
		t.Fatalf("ClearBranch(248, 4): %v", err)
	}

	want := []uint64{200, 201, 202, 203, 204, 205, 206, 207, 248, 249, 250, 251}
	for i, w := range want {
		off, ok := b.ReserveBit()
		if !ok {
			t.Fatalf("ReserveBit #%d failed, want offset %d", i, w)
		}
		if off != w {
			t.Errorf("ReserveBit #%d = %d, want %d", i, off, w)
		}
	}
	if _, ok := b.ReserveBit(); ok {
		t.Fatalf("13th ReserveBit succeeded, want failure")
	}
}

// TestScenarioS5HalfUniverse is spec scenario S5.
func TestScenarioS5HalfUniverse(t *testing.T) {
	const half = uint64(1) << 63
	b := Create(half)
	if b.Size() != half {
		t.Fatalf("Size() = %d, want 2^63", b.Size())
	}
	if err := b.SetBranch(0, 0); err != nil {
		t.Fatalf("SetBranch(0, 0): %v", err)
	}
	if b.CountOnes() != half {
		t.Errorf("CountOnes() = %d, want 2^63", b.CountOnes())
	}
}

func TestBranchWholeUniverse2_64(t *testing.T) {
	t.Parallel()
	b := Create(0)
	if err := b.SetBranch(0, 0); err != nil {
		t.Fatalf("SetBranch(0, 0): %v", err)
	}
	if b.top.kind != sentinelFull {
		t.Fatalf("root kind = %v, want FULL", b.top.kind)
	}
	if b.CountOnes() != ^uint64(0) {
		t.Errorf("CountOnes() = %#x, want saturated MaxUint64", b.CountOnes())
	}
}

func TestBranchValidationErrors(t *testing.T) {
	t.Parallel()
	b := Create(256)

	cases := []struct {
		name         string
		offset, size uint64
		want         error
	}{
		{"not power of two", 0, 5, ErrBranchNotPowerOfTwo},
		{"misaligned", 3, 4, ErrBranchMisaligned},
		{"too large", 0, 512, ErrBranchTooLarge},
		{"out of range", 256, 64, ErrBranchOutOfRange},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := b.SetBranch(c.offset, c.size)
			if !errors.Is(err, c.want) {
				t.Errorf("SetBranch(%d, %d) = %v, want %v", c.offset, c.size, err, c.want)
			}
			if b.CountOnes() != 0 {
				t.Errorf("rejected SetBranch mutated the Bitmap")
			}
		})
	}
}
