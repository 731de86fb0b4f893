// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package checksum implements the Adler32 running checksum used by both
// container formats.
//
// Archives store one Adler32 per file, accumulated across every 256 KiB
// block as the file is streamed in. Databases end with a footer of four
// Adler32 values, one of which is chained across all regions in file
// order. Both uses depend on the checksum being composable: feeding a
// buffer in two calls with the running value carried between them gives
// the same result as a single call over the whole buffer.
//
// [Adler32] is a value type holding the running state. The zero value
// is not ready for use; call [New] or [Adler32.Reset].
package checksum
