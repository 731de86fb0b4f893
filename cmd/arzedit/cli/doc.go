// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for arzedit.
//
// The central type is [Command], a named command with optional nested
// [Command.Subcommands], a [pflag.FlagSet] factory and a Run function.
// [Command.Execute] parses flags, routes subcommands and prints help.
// Flags are usually declared as tagged struct fields and bound with
// [FlagsFromParams].
//
// Unknown commands and flags get a "did you mean" suggestion computed
// by Levenshtein distance (threshold 3).
//
// [NewCommandLogger] and [NewProgressSink] build the logger and the
// terminal progress display shared by every command.
package cli
