// Copyright (c) 2022 Lars Ekman
// SPDX-License-Identifier: MIT

package bitmaptree

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/zhuyie/golzf"
)

// treeStoreLzf is a second registered codec, "tree-store-lzf": the
// same 3-byte header and preorder node stream as "tree-store", but
// with the node stream passed through LZF compression. It exists for
// callers whose trees are sparse-but-not-uniform — many small,
// distinct leaves rather than a handful of huge collapsed ranges —
// where the preorder stream itself still has exploitable redundancy
// even though the trie has already pruned every uniform subtree.
//
// The 3-byte header is never compressed, so a reader can still tell a
// uniform tree apart from a compressed one without touching golzf at
// all, preserving the "3 bytes for any uniform tree" property of the
// default codec.
//
// Body layout (after the 3-byte header, only present for non-uniform
// trees):
//
//	1 byte:  format; 0 = stored literally, 1 = LZF-compressed.
//	4 bytes: length of the uncompressed node stream, little-endian.
//	if format == 1: 4 bytes compressed length, then that many
//	                compressed bytes.
//	if format == 0: the node stream itself, uncompressed.
func lzfWrite(b *Bitmap, w io.Writer) error {
	var buf bytes.Buffer
	if err := treeStoreWrite(b, &buf); err != nil {
		return err
	}
	raw := buf.Bytes()

	if _, err := w.Write(raw[:3]); err != nil {
		return err
	}
	body := raw[3:]
	if len(body) == 0 {
		return nil
	}

	compressed := make([]byte, len(body))
	n, cerr := golzf.Compress(body, compressed)
	if cerr != nil || n >= len(body) {
		// Incompressible, or golzf couldn't shrink it: store as-is
		// rather than fail the write.
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(body))); err != nil {
			return err
		}
		_, err := w.Write(body)
		return err
	}

	if _, err := w.Write([]byte{1}); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(len(body))); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(n)); err != nil {
		return err
	}
	_, err := w.Write(compressed[:n])
	return err
}

func lzfRead(r io.Reader) (*Bitmap, error) {
	b, uniform, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if uniform {
		return b, nil
	}

	var format [1]byte
	if _, err := io.ReadFull(r, format[:]); err != nil {
		return nil, fmt.Errorf("bitmaptree: short read on lzf format byte: %w", err)
	}

	rawLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch format[0] {
	case 0:
		body = make([]byte, rawLen)
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, fmt.Errorf("bitmaptree: short read on literal body: %w", err)
		}
	case 1:
		compLen, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		compressed := make([]byte, compLen)
		if _, err := io.ReadFull(r, compressed); err != nil {
			return nil, fmt.Errorf("bitmaptree: short read on compressed body: %w", err)
		}
		out := make([]byte, rawLen)
		n, derr := golzf.Decompress(compressed, out)
		if derr != nil {
			return nil, fmt.Errorf("bitmaptree: lzf decompress: %w", derr)
		}
		body = out[:n]
	default:
		return nil, fmt.Errorf("bitmaptree: invalid lzf format byte %d", format[0])
	}

	top, err := readNode(bytes.NewReader(body), b.levels, b.pool)
	if err != nil {
		return nil, err
	}
	b.top = top
	return b, nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("bitmaptree: short read on length: %w", err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}
