// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports which build of arzedit is running and which
// container versions it handles.
//
// Release builds stamp [Version], [GitCommit], [GitDirty] and
// [BuildTime] with -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/arzedit/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/arzedit
//
// A plain go build leaves GitCommit unset; the revision then comes
// from the VCS settings the go command embeds in the binary. [Info] is
// the one-line form; [Full] adds the toolchain, platform and [Formats]
// for bug reports.
package version
