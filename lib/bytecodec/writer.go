// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecodec

import (
	"encoding/binary"
	"io"
)

// Writer encodes little-endian values onto an io.Writer.
type Writer struct {
	sink    io.Writer
	scratch [8]byte
	written int64
	err     error
}

// NewWriter returns a Writer over sink.
func NewWriter(sink io.Writer) *Writer {
	return &Writer{sink: sink}
}

// Err returns the first error encountered, or nil.
func (w *Writer) Err() error { return w.err }

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 { return w.written }

// Bytes writes data verbatim.
func (w *Writer) Bytes(data []byte) {
	if w.err != nil {
		return
	}
	n, err := w.sink.Write(data)
	w.written += int64(n)
	if err != nil {
		w.err = err
	}
}

// Uint8 writes one byte.
func (w *Writer) Uint8(v uint8) {
	w.scratch[0] = v
	w.Bytes(w.scratch[:1])
}

// Bool writes 1 for true and 0 for false.
func (w *Writer) Bool(v bool) {
	if v {
		w.Uint8(1)
		return
	}
	w.Uint8(0)
}

// Int16 writes a little-endian int16.
func (w *Writer) Int16(v int16) {
	binary.LittleEndian.PutUint16(w.scratch[:2], uint16(v))
	w.Bytes(w.scratch[:2])
}

// Int32 writes a little-endian int32.
func (w *Writer) Int32(v int32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], uint32(v))
	w.Bytes(w.scratch[:4])
}

// Uint32 writes a little-endian uint32.
func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.scratch[:4], v)
	w.Bytes(w.scratch[:4])
}

// Int64 writes a little-endian int64.
func (w *Writer) Int64(v int64) {
	binary.LittleEndian.PutUint64(w.scratch[:8], uint64(v))
	w.Bytes(w.scratch[:8])
}

// String writes an int32 length prefix followed by the raw bytes of s.
func (w *Writer) String(s string) {
	w.Int32(int32(len(s)))
	w.Bytes([]byte(s))
}
