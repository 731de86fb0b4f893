// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package arz reads and writes database containers: typed game-data
// records addressed by path, with one compressed payload per record.
//
// On disk a database is
//
//	[header][record payloads][record table][string table][footer]
//
// The header is 24 bytes. Payload offsets in the record table are
// relative to the end of the header. The string table holds every
// record name, field name and string value; records refer to strings
// by id. The footer holds four Adler-32 checksums: one chained over
// everything before it, then one each for the string table, the
// payload region and the record table.
//
// A [Reader] parses the header, record table and string table eagerly
// and decodes a record's fields only when [Reader.Record] is called.
// Decoded records are kept under a [CachePolicy].
//
// A [Writer] accumulates payloads and record metadata in memory and
// emits the container in one pass from [Writer.WriteTo], since the
// header depends on the size of every region.
package arz
