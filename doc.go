// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

// Package bitmaptree implements a compressed sparse bit array: a bit
// vector of up to 2^64 bits whose in-memory and on-wire size is
// proportional to the number of zero/one run boundaries it contains,
// not to its nominal length.
//
// A Bitmap is a recursive binary trie of Nodes rooted at an optional
// top slot. Any slot in the trie — the top, or either child of an
// interior node — can hold one of two sentinels, EMPTY or FULL,
// standing in for an entire uniform subtree instead of a materialized
// Node. Mutating operations re-establish a canonical, maximally pruned
// shape on every return: no interior node ever has two EMPTY children,
// two FULL children, or a leaf whose 64-bit word is all-zero or
// all-one.
//
// Bitmap is well suited to large, mostly-uniform address spaces such
// as IP address pools, block allocators, and other set-compression
// problems where a plain bit array would be wasteful but a full
// associative container would be overkill.
//
// Bitmap is not safe for concurrent mutation; concurrent read-only use
// of a Bitmap that nobody is mutating is fine. Serialization blocks
// only inside the supplied io.Writer/io.Reader.
package bitmaptree
