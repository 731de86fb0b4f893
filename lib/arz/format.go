// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arz

import (
	"errors"
	"fmt"
)

const (
	// HeaderSize is the encoded size of [Header].
	HeaderSize = 24

	// FooterSize is the encoded size of [Footer].
	FooterSize = 16

	// Magic and Version are the two leading int16 fields.
	Magic   = 2
	Version = 3

	// entryHeaderSize is the fixed part of an encoded entry: type,
	// value count and name id.
	entryHeaderSize = 8
)

// ErrMalformed reports a header or table region that cannot be parsed.
var ErrMalformed = errors.New("malformed database")

// ErrChecksumMismatch reports a footer checksum that does not match
// the data it covers.
var ErrChecksumMismatch = errors.New("database checksum mismatch")

// Header is the fixed database header.
type Header struct {
	Magic              int16
	Version            int16
	RecordTableStart   int32
	RecordTableSize    int32
	RecordTableEntries int32
	StringTableStart   int32
	StringTableSize    int32
}

// FooterStart returns the offset of the checksum footer.
func (h Header) FooterStart() int64 {
	return int64(h.StringTableStart) + int64(h.StringTableSize)
}

// Footer holds the checksums written after the string table.
type Footer struct {
	All         uint32
	Strings     uint32
	Payload     uint32
	RecordTable uint32
}

// EntryType tags the meaning of an entry's value slots.
type EntryType uint16

const (
	Int    EntryType = 0
	Real   EntryType = 1
	String EntryType = 2
	Bool   EntryType = 3
)

func (t EntryType) String() string {
	switch t {
	case Int:
		return "int"
	case Real:
		return "real"
	case String:
		return "string"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("EntryType(%d)", uint16(t))
	}
}
