// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

// Command bitmaptreedemo exercises bitmaptree the way a tiny IPAM
// address-pool allocator would: build a pool sized for a /16, reserve
// a batch of addresses, return some of them, and round-trip the pool
// through the default codec.
package main

import (
	"bytes"
	"log"
	"time"

	"github.com/lgekman/bitmaptree"
)

func main() {
	log.SetFlags(log.Lmicroseconds)

	const poolSize = 1 << 16 // a /16, 65536 addresses
	pool := bitmaptree.Create(poolSize)

	ts := time.Now()
	reserved := make([]uint64, 0, 1000)
	for range 1000 {
		offset, ok := pool.ReserveBit()
		if !ok {
			log.Fatal("pool exhausted reserving addresses")
		}
		reserved = append(reserved, offset)
	}
	log.Printf("reserved %d addresses in %v, nodes=%d ones=%d",
		len(reserved), time.Since(ts), pool.CountNodes(), pool.CountOnes())

	// Return a contiguous /24 block back to the pool in one call,
	// regardless of how many individual addresses it covers.
	if err := pool.ClearBranch(0, 256); err != nil {
		log.Fatalf("clear branch: %v", err)
	}
	log.Printf("returned a /24 block, nodes=%d ones=%d", pool.CountNodes(), pool.CountOnes())

	var buf bytes.Buffer
	if err := pool.Write(&buf); err != nil {
		log.Fatalf("write: %v", err)
	}
	log.Printf("serialized pool to %d bytes", buf.Len())

	roundTripped, err := bitmaptree.Read(&buf)
	if err != nil {
		log.Fatalf("read: %v", err)
	}
	if bitmaptree.Compare(pool, roundTripped) != 0 {
		log.Fatal("round-tripped pool does not match original")
	}
	log.Printf("round-trip OK, digest=%#x", pool.Digest())
}
