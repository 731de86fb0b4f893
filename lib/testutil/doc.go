// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for arzedit packages.
//
// [SeekBuffer] is an in-memory io.WriteSeeker and io.ReaderAt, so
// container writers and readers can be exercised without touching the
// filesystem.
//
// [WriteTree] and [ReadTree] lay out and collect small directory trees
// given as slash-separated path to content maps. They are how mod
// source folders, template roots and unpack targets are built in tests.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no arzedit-internal dependencies.
package testutil
