// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for arzedit.
//
// Configuration comes from a single file named by the --config flag
// (via [LoadFile]) or the ARZEDIT_CONFIG environment variable (via
// [Load]). There is no discovery: when neither is given the tool runs
// on [Default]. Files ending in .json or .jsonc are read as JSON with
// comments and trailing commas; anything else is YAML.
//
// Path fields accept ${VAR} and ${VAR:-default} references, expanded
// once after loading. No other environment variables override config
// values; command-line flags are applied on top by the caller.
//
// Key exports:
//
//   - [Config] -- templates, build, database, tools and log settings
//   - [Default] -- the settings used without a file
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Validate] -- reports every invalid field at once
//
// This package depends only on lib/textenc.
package config
