// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecodec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// maxStringLength caps length-prefixed strings so that a corrupt
// prefix cannot trigger a huge allocation.
const maxStringLength = 1 << 20

// Reader decodes little-endian values from an io.Reader.
type Reader struct {
	source  io.Reader
	scratch [8]byte
	err     error
}

// NewReader returns a Reader over source.
func NewReader(source io.Reader) *Reader {
	return &Reader{source: source}
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fill(n int) []byte {
	if r.err != nil {
		return nil
	}
	buffer := r.scratch[:n]
	if _, err := io.ReadFull(r.source, buffer); err != nil {
		r.err = err
		return nil
	}
	return buffer
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	buffer := r.fill(1)
	if buffer == nil {
		return 0
	}
	return buffer[0]
}

// Bool reads one byte and reports whether it is non-zero.
func (r *Reader) Bool() bool { return r.Uint8() != 0 }

// Int16 reads a little-endian int16.
func (r *Reader) Int16() int16 {
	buffer := r.fill(2)
	if buffer == nil {
		return 0
	}
	return int16(binary.LittleEndian.Uint16(buffer))
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32() int32 {
	buffer := r.fill(4)
	if buffer == nil {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(buffer))
}

// Int64 reads a little-endian int64.
func (r *Reader) Int64() int64 {
	buffer := r.fill(8)
	if buffer == nil {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(buffer))
}

// Bytes reads exactly n bytes into a new slice.
func (r *Reader) Bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.err = fmt.Errorf("negative byte count %d", n)
		return nil
	}
	buffer := make([]byte, n)
	if _, err := io.ReadFull(r.source, buffer); err != nil {
		r.err = err
		return nil
	}
	return buffer
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) {
	if r.err != nil {
		return
	}
	if _, err := io.CopyN(io.Discard, r.source, int64(n)); err != nil {
		r.err = err
	}
}

// String reads an int32 length followed by that many bytes. The bytes
// are returned unconverted; callers decode them with the code page of
// the surrounding format.
func (r *Reader) String() string {
	length := r.Int32()
	if r.err != nil {
		return ""
	}
	if length < 0 || length > maxStringLength {
		r.err = fmt.Errorf("string length %d out of range", length)
		return ""
	}
	return string(r.Bytes(int(length)))
}

// Struct decodes a fixed-size struct with encoding/binary.
func (r *Reader) Struct(value any) {
	if r.err != nil {
		return
	}
	if err := binary.Read(r.source, binary.LittleEndian, value); err != nil {
		r.err = err
	}
}
