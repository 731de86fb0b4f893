// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bytecodec reads and writes the little-endian primitives that
// compiled asset descriptors are made of, and provides [IndexOf], a
// Boyer-Moore byte pattern search used to locate embedded model data
// inside compiled mesh files.
//
// [Reader] and [Writer] carry a sticky error: after the first failure
// every later call is a no-op returning zero values, and [Reader.Err]
// or [Writer.Err] reports the failure. This lets parsers read a whole
// fixed header and check for errors once.
package bytecodec
