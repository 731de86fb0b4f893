// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the arzedit command tree. Each command
// parses its flags, merges them over the loaded configuration and hands
// off to an operation in lib/modtool.
package commands
