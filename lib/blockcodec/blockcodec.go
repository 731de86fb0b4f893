// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package blockcodec is the single block compressor shared by the
// archive and database formats: raw LZ4 blocks with no frame, no
// checksum and no size prefix. Sizes travel in the surrounding
// container tables.
//
// Archives apply a keep-if-smaller policy per 256 KiB block ([Compress]
// and [CompressOrStore]). Database record payloads are always stored
// as an LZ4 block, even when that is larger than the input ([Encode]),
// because the database record table has no "stored" marker.
package blockcodec

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// ErrIncompressible is returned by [Compress] when the LZ4 form would
// not be strictly smaller than the input.
var ErrIncompressible = errors.New("data is incompressible")

// Encode returns data as an LZ4 block. The destination is allocated at
// the worst-case bound, so the encoder always emits a valid block.
func Encode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return []byte{}, nil
	}
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if written == 0 {
		return nil, fmt.Errorf("lz4 compress: encoder produced no output for %d bytes", len(data))
	}
	return destination[:written], nil
}

// Compress returns the LZ4 block form of data, or [ErrIncompressible]
// when that form is not strictly smaller than data.
func Compress(data []byte) ([]byte, error) {
	compressed, err := Encode(data)
	if err != nil {
		return nil, err
	}
	if len(compressed) == 0 || len(compressed) >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed, nil
}

// CompressOrStore applies the keep-if-smaller policy. It returns the
// compressed block and stored=false, or data itself and stored=true.
func CompressOrStore(data []byte) (output []byte, stored bool) {
	compressed, err := Compress(data)
	if err != nil {
		return data, true
	}
	return compressed, false
}

// Decompress decodes an LZ4 block that must expand to exactly size
// bytes.
func Decompress(compressed []byte, size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("lz4 decompress: negative size %d", size)
	}
	destination := make([]byte, size)
	if size == 0 {
		return destination, nil
	}
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, size)
	}
	return destination, nil
}
