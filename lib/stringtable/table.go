// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stringtable

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// CorruptPlaceholder is appended when loading stops at a malformed
// count or length, so ids that pointed past the damage resolve to a
// recognizable value.
const CorruptPlaceholder = "[invalid string table data]"

// Table is an append-only string pool addressed by id.
type Table struct {
	strings []string
	index   map[string]int32
	codec   textenc.Codec
	logger  *slog.Logger
}

// New returns an empty table. A nil logger discards diagnostics.
func New(codec textenc.Codec, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Table{codec: codec, logger: logger}
}

// Load parses a serialized string table. The data holds one or more
// groups, each an int32 count followed by count (int32 length, bytes)
// pairs. Malformed input is logged and the table is truncated at the
// point of damage; Load itself never fails.
func Load(data []byte, codec textenc.Codec, logger *slog.Logger) *Table {
	table := New(codec, logger)
	position := 0
	readInt32 := func() (int32, bool) {
		if position+4 > len(data) {
			return 0, false
		}
		value := int32(binary.LittleEndian.Uint32(data[position:]))
		position += 4
		return value, true
	}

	for position < len(data) {
		count, ok := readInt32()
		if !ok {
			table.truncated("not enough bytes for group count", position)
			return table
		}
		if count < 0 {
			table.truncated(fmt.Sprintf("negative group count %d", count), position-4)
			return table
		}
		for i := int32(0); i < count; i++ {
			length, ok := readInt32()
			if !ok {
				table.truncated("not enough bytes for string length", position)
				return table
			}
			if length < 0 || position+int(length) > len(data) {
				table.truncated(fmt.Sprintf("string length %d exceeds table", length), position-4)
				return table
			}
			table.strings = append(table.strings, codec.Decode(data[position:position+int(length)]))
			position += int(length)
		}
	}
	return table
}

func (t *Table) truncated(reason string, offset int) {
	t.logger.Error("string table truncated",
		"reason", reason,
		"offset", offset,
		"strings_loaded", len(t.strings),
	)
	t.strings = append(t.strings, CorruptPlaceholder)
}

// Len returns the number of strings.
func (t *Table) Len() int { return len(t.strings) }

// Strings returns the strings in id order. The slice must not be
// modified.
func (t *Table) Strings() []string { return t.strings }

// Codec returns the code page used for serialization.
func (t *Table) Codec() textenc.Codec { return t.codec }

// Get returns the string with the given id. An out-of-range id is
// logged and resolves to a placeholder naming the index.
func (t *Table) Get(id int32) string {
	if id < 0 || int(id) >= len(t.strings) {
		t.logger.Error("string id out of range", "id", id, "table_size", len(t.strings))
		return fmt.Sprintf("[invalid string: index=%d]", id)
	}
	return t.strings[id]
}

// Add returns the id of value, appending it if it is not present yet.
func (t *Table) Add(value string) int32 {
	t.ensureIndex()
	if id, ok := t.index[value]; ok {
		return id
	}
	id := int32(len(t.strings))
	t.strings = append(t.strings, value)
	t.index[value] = id
	return id
}

// Lookup returns the id of value without adding it.
func (t *Table) Lookup(value string) (int32, bool) {
	t.ensureIndex()
	id, ok := t.index[value]
	return id, ok
}

// ensureIndex builds the reverse index. When a loaded table contains
// duplicates the lowest id wins.
func (t *Table) ensureIndex() {
	if t.index != nil {
		return
	}
	t.index = make(map[string]int32, len(t.strings))
	for i, value := range t.strings {
		if _, exists := t.index[value]; !exists {
			t.index[value] = int32(i)
		}
	}
}

// WriteTo serializes the table as a single group.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	data, err := t.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// MarshalBinary serializes the table as a single group.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(t.strings)))
	buffer.Write(scratch[:])
	for _, value := range t.strings {
		encoded := t.codec.Encode(value)
		binary.LittleEndian.PutUint32(scratch[:], uint32(len(encoded)))
		buffer.Write(scratch[:])
		buffer.Write(encoded)
	}
	return buffer.Bytes(), nil
}
