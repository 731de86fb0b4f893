// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration used for the tool's own
// on-disk state, such as the incremental build cache.
//
// The game containers have fixed binary layouts and do not go through
// this package. State the tool writes for itself is CBOR with Core
// Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same logical
// state always encodes to the same bytes, so a state file can be
// compared or hashed directly.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types serialized here use `cbor` struct tags.
package codec
