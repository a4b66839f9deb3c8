// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ReadFunc reconstructs a Bitmap from a byte stream produced by a
// matching WriteFunc. It must release any nodes it allocated before
// returning a non-nil error.
type ReadFunc func(r io.Reader) (*Bitmap, error)

// WriteFunc writes a Bitmap to w in some codec's wire format.
type WriteFunc func(b *Bitmap, w io.Writer) error

// Write serializes b to w using the currently active codec (see
// SelectMethod), "tree-store" by default.
func (b *Bitmap) Write(w io.Writer) error {
	write, _, err := currentCodec()
	if err != nil {
		return err
	}
	return write(b, w)
}

// Read reconstructs a Bitmap from r using the currently active codec
// (see SelectMethod), "tree-store" by default.
func Read(r io.Reader) (*Bitmap, error) {
	_, read, err := currentCodec()
	if err != nil {
		return nil, err
	}
	return read(r)
}

// Wire format (little-endian throughout):
//
//	offset 0, 2 bytes: version word, currently all zero.
//	offset 2, 1 byte:  low 6 bits = log2(size) (0 means 2^64);
//	                   bit 0x80   = "tree is uniform" (empty or full);
//	                   bit 0x40   = 1 FULL / 0 EMPTY, valid only if 0x80 is set.
//
// If the tree is uniform, no nodes follow. Otherwise a preorder node
// stream follows the 3-byte header:
//
//	tag 0x00:     leaf node, followed by 8 bytes of its bits word.
//	any other tag: interior node; high nibble describes the zero
//	               child, low nibble the one child. 0x4_/0x_4 = EMPTY,
//	               0x5_/0x_5 = FULL, 0x7_/0x_7 = an inline node stream
//	               follows (zero child first, then one child).
const wireVersion = uint16(0)

func treeStoreWrite(b *Bitmap, w io.Writer) error {
	var hdr [3]byte
	binary.LittleEndian.PutUint16(hdr[0:2], wireVersion)

	logSize := (b.levels + minLeafLevels) & 0x3f
	hdr[2] = logSize

	uniform := b.top.kind != allocated
	if uniform {
		hdr[2] |= 0x80
		if b.top.kind == sentinelFull {
			hdr[2] |= 0x40
		}
	}

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if uniform {
		return nil
	}
	return writeNode(w, b.top)
}

func writeNode(w io.Writer, s slot) error {
	n := s.n

	if n.level == 0 {
		if _, err := w.Write([]byte{0x00}); err != nil {
			return err
		}
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], n.bits)
		_, err := w.Write(buf[:])
		return err
	}

	var tag byte
	switch n.zero.kind {
	case sentinelEmpty:
		tag = 0x40
	case sentinelFull:
		tag = 0x50
	default:
		tag = 0x70
	}
	switch n.one.kind {
	case sentinelEmpty:
		tag += 0x04
	case sentinelFull:
		tag += 0x05
	default:
		tag += 0x07
	}

	if _, err := w.Write([]byte{tag}); err != nil {
		return err
	}
	if n.zero.kind == allocated {
		if err := writeNode(w, n.zero); err != nil {
			return err
		}
	}
	if n.one.kind == allocated {
		if err := writeNode(w, n.one); err != nil {
			return err
		}
	}
	return nil
}

// readHeader reads and decodes the 3-byte wire header from r. If the
// tree is uniform, the returned Bitmap's top is already set and
// uniform is true; the caller must not try to read a node stream.
func readHeader(r io.Reader) (b *Bitmap, uniform bool, err error) {
	var hdr [3]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, false, fmt.Errorf("bitmaptree: short read on header: %w", err)
	}

	version := binary.LittleEndian.Uint16(hdr[0:2])
	if version != wireVersion {
		return nil, false, fmt.Errorf("bitmaptree: unsupported wire version %d", version)
	}

	flags := hdr[2]
	logSize := flags & 0x3f

	b = &Bitmap{pool: newNodePool()}
	switch {
	case logSize == 0:
		b.levels = 64 - minLeafLevels
	case logSize < minLeafLevels:
		return nil, false, fmt.Errorf("bitmaptree: invalid encoded size exponent %d", logSize)
	default:
		b.size = uint64(1) << logSize
		b.levels = logSize - minLeafLevels
	}

	if flags&0x80 != 0 {
		if flags&0x40 != 0 {
			b.top = slot{kind: sentinelFull}
		} else {
			b.top = slot{kind: sentinelEmpty}
		}
		return b, true, nil
	}
	return b, false, nil
}

func treeStoreRead(r io.Reader) (*Bitmap, error) {
	b, uniform, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if uniform {
		return b, nil
	}

	top, err := readNode(r, b.levels, b.pool)
	if err != nil {
		return nil, err
	}
	b.top = top
	return b, nil
}

func readNode(r io.Reader, level uint8, pool *nodePool) (slot, error) {
	var tagBuf [1]byte
	if _, err := io.ReadFull(r, tagBuf[:]); err != nil {
		return slot{}, fmt.Errorf("bitmaptree: short read on node tag: %w", err)
	}
	tag := tagBuf[0]

	n := pool.get()
	n.level = level

	if tag == 0x00 {
		if level > 0 {
			pool.put(n)
			return slot{}, errors.New("bitmaptree: leaf tag found above level 0")
		}
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			pool.put(n)
			return slot{}, fmt.Errorf("bitmaptree: short read on leaf bits: %w", err)
		}
		n.bits = binary.LittleEndian.Uint64(buf[:])
		return slot{kind: allocated, n: n}, nil
	}

	if level == 0 {
		pool.put(n)
		return slot{}, errors.New("bitmaptree: interior tag found at level 0")
	}

	switch tag & 0xf0 {
	case 0x40:
		n.zero = slot{kind: sentinelEmpty}
	case 0x50:
		n.zero = slot{kind: sentinelFull}
	case 0x70:
		sub, err := readNode(r, level-1, pool)
		if err != nil {
			pool.put(n)
			return slot{}, err
		}
		n.zero = sub
	default:
		pool.put(n)
		return slot{}, fmt.Errorf("bitmaptree: invalid zero-child tag 0x%02x", tag)
	}

	switch tag & 0x0f {
	case 0x04:
		n.one = slot{kind: sentinelEmpty}
	case 0x05:
		n.one = slot{kind: sentinelFull}
	case 0x07:
		sub, err := readNode(r, level-1, pool)
		if err != nil {
			freeTree(n, pool)
			return slot{}, err
		}
		n.one = sub
	default:
		freeTree(n, pool)
		return slot{}, fmt.Errorf("bitmaptree: invalid one-child tag 0x%02x", tag)
	}

	return slot{kind: allocated, n: n}, nil
}
