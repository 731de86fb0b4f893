// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/bureau-foundation/arzedit/lib/blockcodec"
	"github.com/bureau-foundation/arzedit/lib/bytecodec"
	"github.com/bureau-foundation/arzedit/lib/checksum"
	"github.com/bureau-foundation/arzedit/lib/stringtable"
)

// Writer assembles a database in memory. Records are stored in the
// order they are added.
type Writer struct {
	strings *stringtable.Table
	payload bytes.Buffer
	table   bytes.Buffer
	count   int32
	logger  *slog.Logger
}

// NewWriter returns a Writer with an empty string table.
func NewWriter(opts ...Option) *Writer {
	resolved := buildOptions(opts)
	return &Writer{
		strings: stringtable.New(resolved.codec, resolved.logger),
		logger:  resolved.logger,
	}
}

// Strings returns the table records added to this writer must be
// built against.
func (w *Writer) Strings() *stringtable.Table { return w.strings }

// Len is the number of records added.
func (w *Writer) Len() int { return int(w.count) }

// Add compresses the record's payload and appends it. The record's
// string ids must refer to [Writer.Strings].
func (w *Writer) Add(record *Record) error {
	if record.strings != w.strings {
		return fmt.Errorf("record %q was built against a different string table", record.Name)
	}
	packed := record.Pack()
	compressed, err := blockcodec.Encode(packed)
	if err != nil {
		return fmt.Errorf("record %q: %w", record.Name, err)
	}
	if int64(w.payload.Len())+int64(len(compressed)) > math.MaxInt32 {
		return fmt.Errorf("record %q: payload region exceeds 2 GiB", record.Name)
	}

	offset := int32(w.payload.Len())
	w.payload.Write(compressed)

	codec := w.strings.Codec()
	entry := bytecodec.NewWriter(&w.table)
	entry.Int32(w.strings.Add(record.Name))
	entry.String(string(codec.Encode(record.Type)))
	entry.Int32(offset)
	entry.Int32(int32(len(compressed)))
	entry.Int32(int32(len(packed)))
	entry.Int64(bytecodec.ToFileTime(record.ModTime))
	if err := entry.Err(); err != nil {
		return fmt.Errorf("record %q: %w", record.Name, err)
	}
	w.count++
	return nil
}

// CopyRecord re-interns a record decoded from another database into
// this writer's string table and appends it.
func (w *Writer) CopyRecord(record *Record) error {
	return w.Add(record.Copy(w.strings))
}

// WriteTo writes the complete database: header, payloads, record
// table, string table and checksum footer.
func (w *Writer) WriteTo(sink io.Writer) (int64, error) {
	strings, err := w.strings.MarshalBinary()
	if err != nil {
		return 0, err
	}
	payload := w.payload.Bytes()
	table := w.table.Bytes()

	recordTableStart := int64(HeaderSize) + int64(len(payload))
	stringTableStart := recordTableStart + int64(len(table))
	if stringTableStart+int64(len(strings)) > math.MaxInt32 {
		return 0, fmt.Errorf("database of %d bytes exceeds 2 GiB", stringTableStart+int64(len(strings)))
	}
	header := Header{
		Magic:              Magic,
		Version:            Version,
		RecordTableStart:   int32(recordTableStart),
		RecordTableSize:    int32(len(table)),
		RecordTableEntries: w.count,
		StringTableStart:   int32(stringTableStart),
		StringTableSize:    int32(len(strings)),
	}
	var headerBuffer bytes.Buffer
	if err := binary.Write(&headerBuffer, binary.LittleEndian, header); err != nil {
		return 0, err
	}
	headerBytes := headerBuffer.Bytes()

	footer := Footer{
		All:         checksum.Chain(headerBytes, payload, table, strings),
		Strings:     checksum.Checksum(strings),
		Payload:     checksum.Checksum(payload),
		RecordTable: checksum.Checksum(table),
	}

	out := bytecodec.NewWriter(sink)
	out.Bytes(headerBytes)
	out.Bytes(payload)
	out.Bytes(table)
	out.Bytes(strings)
	out.Uint32(footer.All)
	out.Uint32(footer.Strings)
	out.Uint32(footer.Payload)
	out.Uint32(footer.RecordTable)
	return out.Written(), out.Err()
}
