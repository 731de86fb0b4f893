// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package asset reads compiled-asset descriptors and turns them into
// game resources.
//
// A descriptor is a small binary file written by the asset manager. It
// names a source file (a texture, a mesh, a map, a sound) relative to
// the mod's source folder and carries the options the matching
// compiler needs. [Parse] decodes the descriptor; [Compiler.Compile]
// runs the external tool, or copies the source through unchanged for
// types that need no compilation. External tools are reached through a
// [Runner] so that tests and non-Windows hosts can substitute their own.
package asset
