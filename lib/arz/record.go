// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arz

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/arzedit/lib/stringtable"
)

// Entry is one field of a record. Values holds raw slots: Int and Bool
// values directly, Real values as IEEE-754 float32 bits, String values
// as string table ids.
type Entry struct {
	Type   EntryType
	NameID int32
	Values []int32
}

// Len is the number of value slots.
func (e Entry) Len() int { return len(e.Values) }

// Int returns slot i as an integer.
func (e Entry) Int(i int) int32 { return e.Values[i] }

// Float returns slot i reinterpreted as a float32.
func (e Entry) Float(i int) float32 {
	return math.Float32frombits(uint32(e.Values[i]))
}

// Bool returns slot i as a boolean.
func (e Entry) Bool(i int) bool { return e.Values[i] != 0 }

// FloatSlot returns the raw slot for a Real value.
func FloatSlot(value float32) int32 {
	return int32(math.Float32bits(value))
}

// Record is one decoded database record. Names and string values are
// resolved through the string table the record was decoded or built
// with.
type Record struct {
	Name    string
	Type    string
	ModTime time.Time
	Entries []Entry

	strings *stringtable.Table
	logger  *slog.Logger
}

// NewRecord returns an empty record bound to table. A nil logger
// discards diagnostics.
func NewRecord(name, recordType string, modTime time.Time, table *stringtable.Table, logger *slog.Logger) *Record {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Record{Name: name, Type: recordType, ModTime: modTime, strings: table, logger: logger}
}

// Strings returns the table that entry name and value ids refer to.
func (r *Record) Strings() *stringtable.Table { return r.strings }

// EntryName returns the field name of e.
func (r *Record) EntryName(e Entry) string {
	return r.strings.Get(e.NameID)
}

// StringValue returns slot i of a String entry.
func (r *Record) StringValue(e Entry, i int) string {
	return r.strings.Get(e.Values[i])
}

// Field returns the first entry whose name matches, ignoring case.
func (r *Record) Field(name string) (Entry, bool) {
	for _, entry := range r.Entries {
		if strings.EqualFold(r.EntryName(entry), name) {
			return entry, true
		}
	}
	return Entry{}, false
}

// Line renders e in record text form: the name, the values joined with
// ';', each followed by a comma. Real values use six decimals.
func (r *Record) Line(e Entry) string {
	var builder strings.Builder
	builder.WriteString(r.EntryName(e))
	builder.WriteByte(',')
	for i, slot := range e.Values {
		if i > 0 {
			builder.WriteByte(';')
		}
		switch e.Type {
		case Real:
			builder.WriteString(strconv.FormatFloat(float64(e.Float(i)), 'f', 6, 32))
		case String:
			builder.WriteString(r.strings.Get(slot))
		default:
			builder.WriteString(strconv.FormatInt(int64(slot), 10))
		}
	}
	builder.WriteByte(',')
	return builder.String()
}

// Lines renders every entry with [Record.Line]. Embedded line breaks
// would split a field across lines, so they are removed.
func (r *Record) Lines() []string {
	lines := make([]string, len(r.Entries))
	for i, entry := range r.Entries {
		line := r.Line(entry)
		if strings.ContainsAny(line, "\r\n") {
			r.logger.Info("removing line breaks from field",
				"record", r.Name,
				"field", r.EntryName(entry),
			)
			line = strings.NewReplacer("\r\n", "", "\r", "", "\n", "").Replace(line)
		}
		lines[i] = line
	}
	return lines
}

// WriteText writes the record as text in the string table's code page,
// one "\n"-terminated line per entry.
func (r *Record) WriteText(w io.Writer) error {
	_, err := w.Write(r.strings.Codec().JoinLines(r.Lines()))
	return err
}

// Pack encodes the entries as an uncompressed payload.
func (r *Record) Pack() []byte {
	size := 0
	for _, entry := range r.Entries {
		size += entryHeaderSize + 4*len(entry.Values)
	}
	data := make([]byte, 0, size)
	for _, entry := range r.Entries {
		data = binary.LittleEndian.AppendUint16(data, uint16(entry.Type))
		data = binary.LittleEndian.AppendUint16(data, uint16(len(entry.Values)))
		data = binary.LittleEndian.AppendUint32(data, uint32(entry.NameID))
		for _, slot := range entry.Values {
			data = binary.LittleEndian.AppendUint32(data, uint32(slot))
		}
	}
	return data
}

// DecodeEntries parses an uncompressed payload. When the payload ends
// inside an entry, the entries before it are returned together with an
// error describing the truncation.
func DecodeEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	position := 0
	for position < len(data) {
		if len(data)-position < entryHeaderSize {
			return entries, fmt.Errorf("%d trailing bytes at offset %d", len(data)-position, position)
		}
		entry := Entry{
			Type:   EntryType(binary.LittleEndian.Uint16(data[position:])),
			NameID: int32(binary.LittleEndian.Uint32(data[position+4:])),
		}
		count := int(binary.LittleEndian.Uint16(data[position+2:]))
		position += entryHeaderSize
		if len(data)-position < 4*count {
			return entries, fmt.Errorf("entry at offset %d declares %d values but %d bytes remain",
				position-entryHeaderSize, count, len(data)-position)
		}
		entry.Values = make([]int32, count)
		for i := range entry.Values {
			entry.Values[i] = int32(binary.LittleEndian.Uint32(data[position:]))
			position += 4
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Copy re-creates the record against another string table, interning
// its name, field names and string values there.
func (r *Record) Copy(table *stringtable.Table) *Record {
	table.Add(r.Name)
	clone := NewRecord(r.Name, r.Type, r.ModTime, table, r.logger)
	clone.Entries = make([]Entry, len(r.Entries))
	for i, entry := range r.Entries {
		copied := Entry{
			Type:   entry.Type,
			NameID: table.Add(r.EntryName(entry)),
			Values: make([]int32, len(entry.Values)),
		}
		for j, slot := range entry.Values {
			if entry.Type == String {
				slot = table.Add(r.strings.Get(slot))
			}
			copied.Values[j] = slot
		}
		clone.Entries[i] = copied
	}
	return clone
}
