// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package arc reads and writes archive containers (.arc), the format
// the game uses to bundle textures, meshes, sounds and text.
//
// # Layout
//
// All integers are little-endian int32 unless noted.
//
//	[header 28 bytes][data region][part table][name pool][TOC]
//
// The header holds the magic "ARC\x00", the version (3), the number of
// TOC entries, the number of parts, the part table size, the name pool
// size and the part table offset. The name pool and TOC follow the part
// table immediately, so their offsets are derived rather than stored.
//
// Each file is cut into blocks of at most [BlockSize] bytes. A block is
// stored as LZ4 when that is strictly smaller than the input and raw
// otherwise; a part record (offset, stored size, original size) describes
// each block. A TOC entry names its parts by (first index, count) and
// carries the whole-file Adler32 and a Windows FILETIME timestamp.
//
// Entries of type 1 whose stored and original sizes are equal are
// "stored whole": their bytes sit contiguously at the entry offset and
// the part table is not consulted. The writer never produces them but
// the reader and repacker preserve them.
//
// # Writing
//
// The writer needs a seekable sink. It reserves a zeroed region for the
// header, streams file data, appends the tables on [Writer.Close] and
// then seeks back to offset 0 to write the finished header.
package arc
