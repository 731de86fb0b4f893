// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"errors"
	"io"
)

// SeekBuffer is a growable byte slice with a cursor. Writes past the
// end extend it; seeking past the end and writing leaves a zero gap.
type SeekBuffer struct {
	data     []byte
	position int64
}

// Write writes p at the cursor.
func (b *SeekBuffer) Write(p []byte) (int, error) {
	end := b.position + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.position:], p)
	b.position = end
	return len(p), nil
}

// Seek moves the cursor.
func (b *SeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = b.position + offset
	case io.SeekEnd:
		target = int64(len(b.data)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if target < 0 {
		return 0, errors.New("negative position")
	}
	b.position = target
	return target, nil
}

// ReadAt reads from the written bytes independent of the cursor.
func (b *SeekBuffer) ReadAt(p []byte, offset int64) (int, error) {
	if offset < 0 {
		return 0, errors.New("negative offset")
	}
	if offset >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[offset:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Bytes returns the buffer contents.
func (b *SeekBuffer) Bytes() []byte { return b.data }

// Len returns the buffer size.
func (b *SeekBuffer) Len() int64 { return int64(len(b.data)) }
