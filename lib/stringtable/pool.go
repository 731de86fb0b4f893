// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stringtable

import (
	"bytes"

	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// Pool is the archive name region: encoded names, each followed by a
// zero byte, addressed by (offset, length) where length excludes the
// terminator.
type Pool struct {
	data  []byte
	codec textenc.Codec
}

// NewPool returns an empty pool.
func NewPool(codec textenc.Codec) *Pool {
	return &Pool{codec: codec}
}

// LoadPool wraps an existing name region. The slice is retained.
func LoadPool(data []byte, codec textenc.Codec) *Pool {
	return &Pool{data: data, codec: codec}
}

// Append stores name and returns its offset and encoded length.
func (p *Pool) Append(name string) (offset, length int32) {
	encoded := p.codec.Encode(name)
	offset = int32(len(p.data))
	p.data = append(p.data, encoded...)
	p.data = append(p.data, 0)
	return offset, int32(len(encoded))
}

// At returns the name stored at offset with the given length. Ranges
// outside the pool yield "" and ok=false. A zero byte inside the range
// ends the name early.
func (p *Pool) At(offset, length int32) (name string, ok bool) {
	if offset < 0 || length < 0 || int64(offset)+int64(length) > int64(len(p.data)) {
		return "", false
	}
	raw := p.data[offset : offset+length]
	if end := bytes.IndexByte(raw, 0); end >= 0 {
		raw = raw[:end]
	}
	return p.codec.Decode(raw), true
}

// Bytes returns the serialized pool.
func (p *Pool) Bytes() []byte { return p.data }

// Len returns the pool size in bytes.
func (p *Pool) Len() int { return len(p.data) }
