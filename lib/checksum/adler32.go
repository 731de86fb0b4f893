// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"hash"
	"hash/adler32"
)

const (
	// modulus is the largest prime smaller than 65536.
	modulus = 65521

	// blockLimit bounds how many bytes are summed before reducing
	// modulo [modulus]. The sums stay inside uint32 for any block at
	// or below this size.
	blockLimit = 3800

	// Initial is the checksum of empty input.
	Initial uint32 = 1
)

// Adler32 is a running Adler32 checksum. It implements hash.Hash32 so
// that it can sit behind io.MultiWriter or io.TeeReader while a stream
// is copied.
type Adler32 struct {
	value uint32
}

var _ hash.Hash32 = (*Adler32)(nil)

// New returns an Adler32 holding the initial value.
func New() *Adler32 {
	return &Adler32{value: Initial}
}

// Resume returns an Adler32 that continues from a previously computed
// running value.
func Resume(value uint32) *Adler32 {
	return &Adler32{value: value}
}

// Compute folds buffer[offset:offset+length] into the running value and
// returns the new value. Sums are reduced every [blockLimit] bytes.
func (a *Adler32) Compute(buffer []byte, offset, length int) uint32 {
	low := a.value & 0xffff
	high := a.value >> 16
	data := buffer[offset : offset+length]
	for len(data) > 0 {
		block := data
		if len(block) > blockLimit {
			block = block[:blockLimit]
		}
		data = data[len(block):]
		for _, b := range block {
			low += uint32(b)
			high += low
		}
		low %= modulus
		high %= modulus
	}
	a.value = high<<16 | low
	return a.value
}

// Write implements io.Writer. It never fails.
func (a *Adler32) Write(p []byte) (int, error) {
	a.Compute(p, 0, len(p))
	return len(p), nil
}

// Sum32 returns the running value.
func (a *Adler32) Sum32() uint32 { return a.value }

// Sum appends the big-endian running value to b.
func (a *Adler32) Sum(b []byte) []byte {
	v := a.value
	return append(b, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// Reset restores the initial value.
func (a *Adler32) Reset() { a.value = Initial }

// Size returns 4.
func (a *Adler32) Size() int { return adler32.Size }

// BlockSize returns 4.
func (a *Adler32) BlockSize() int { return 4 }

// Checksum returns the Adler32 of data in one call.
func Checksum(data []byte) uint32 {
	return New().Compute(data, 0, len(data))
}

// Chain computes one Adler32 across several regions in order, as if
// they were concatenated.
func Chain(regions ...[]byte) uint32 {
	running := New()
	for _, region := range regions {
		running.Compute(region, 0, len(region))
	}
	return running.Sum32()
}
