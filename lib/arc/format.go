// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arc

import (
	"errors"
	"time"
)

const (
	// HeaderSize is the encoded size of [Header].
	HeaderSize = 28

	// Version is the only version the writer produces.
	Version = 3

	// BlockSize is the largest amount of file data held by one part.
	BlockSize = 256 * 1024

	// headerReserve is the zeroed region the writer leaves in front
	// of the data so the header can be rewritten in place.
	headerReserve = 0x800

	partRecordSize = 12
	tocRecordSize  = 44
)

// Magic identifies an archive container.
var Magic = [4]byte{'A', 'R', 'C', 0}

// Entry types seen in shipped archives. Only [TypeStoredWhole] changes
// how an entry is read; other values are carried through unchanged.
const (
	TypeStoredWhole int32 = 1
	TypeBlocks      int32 = 3
)

// NullName is how entries with an empty name are listed.
const NullName = "(null)"

// ErrMalformed reports a header or table region that cannot be parsed.
// It is fatal for the whole archive.
var ErrMalformed = errors.New("malformed archive")

// Header is the fixed archive header.
type Header struct {
	Magic          [4]byte
	Version        int32
	EntryCount     int32
	PartCount      int32
	PartTableSize  int32
	NamePoolSize   int32
	PartTableStart int32
}

// NamePoolStart returns the offset of the name pool.
func (h Header) NamePoolStart() int64 {
	return int64(h.PartTableStart) + int64(h.PartTableSize)
}

// TOCStart returns the offset of the first TOC entry.
func (h Header) TOCStart() int64 {
	return h.NamePoolStart() + int64(h.NamePoolSize)
}

// Part locates one stored block.
type Part struct {
	Offset           int32
	CompressedSize   int32
	DecompressedSize int32
}

// Compressed reports whether the part holds an LZ4 block rather than
// raw bytes.
func (p Part) Compressed() bool {
	return p.CompressedSize < p.DecompressedSize
}

// tocRecord is the on-disk TOC entry.
type tocRecord struct {
	Type             int32
	Offset           int32
	CompressedSize   int32
	DecompressedSize int32
	Checksum         uint32
	FileTime         int64
	PartCount        int32
	FirstPart        int32
	NameLength       int32
	NameOffset       int32
}

// Entry is one file in an archive.
type Entry struct {
	Name             string
	Type             int32
	Offset           int32
	CompressedSize   int32
	DecompressedSize int32
	Checksum         uint32
	ModTime          time.Time
	PartCount        int32
	FirstPart        int32
}

// StoredWhole reports whether the entry bypasses the part table.
func (e Entry) StoredWhole() bool {
	return e.Type == TypeStoredWhole && e.CompressedSize == e.DecompressedSize
}

// ListName returns the name used when listing, substituting [NullName]
// for anonymous entries.
func (e Entry) ListName() string {
	if e.Name == "" {
		return NullName
	}
	return e.Name
}
