// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package modtool implements the batch operations of the mod toolchain:
// packing and unpacking archives, extracting and building databases,
// compiling assets, and the combined mod build.
//
// Every operation runs its items one at a time in a stable order,
// reports through a [progress.Sink], and checks the context only
// between items. Failures of a single item are tallied in the returned
// [batch.Summary]; the operation's error return is reserved for
// failures that make the whole output unusable (an unreadable
// container, an unwritable destination, cancellation).
package modtool
