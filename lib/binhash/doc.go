// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content digests for source files.
//
// The incremental build compares the digest of each record source
// file with the digest recorded when the record was last built; an
// unchanged digest means the cached record can be replayed instead of
// parsed again.
//
//   - [Sum] digests a byte slice already in memory
//   - [HashReader] streams a reader through the hash
//   - [FormatDigest] and [ParseDigest] convert to and from the
//     hex form used in logs
package binhash
