// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package stringtable holds the deduplicated string pools of the two
// container formats.
//
// [Table] is the database pool: strings addressed by a dense int32 id,
// serialized as a count followed by length-prefixed entries. Ids never
// change once assigned and the table only grows. The reverse index used
// by [Table.Add] is built on first use, so read-only consumers that
// only resolve ids never pay for it.
//
// [Pool] is the archive name pool: zero-terminated names packed back to
// back and addressed by (offset, length) from the archive TOC.
//
// Each open archive or database owns its own instance. Nothing here is
// shared between codecs and nothing is safe for concurrent mutation.
package stringtable
