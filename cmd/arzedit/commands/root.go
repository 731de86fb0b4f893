// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/version"
)

// stdout receives command output; tests replace it.
var stdout io.Writer = os.Stdout

// Root returns the arzedit command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:    "arzedit",
		Summary: "Grim Dawn archive and database tool",
		Description: `arzedit reads and writes Grim Dawn .arc archives and .arz databases,
and builds mods: it converts .dbr record files into a database using
the game's .tpl templates, compiles assets with the game's tools and
packs resource folders into archives.

Settings are read from the file named by --config or $ARZEDIT_CONFIG
(YAML, or JSON with comments). Every command accepts --config,
--verbose, --quiet and --encoding.`,
		Subcommands: []*cli.Command{
			buildCommand(),
			packCommand(),
			extractCommand(),
			getCommand(),
			arcCommand(),
			unarcCommand(),
			repackCommand(),
			listCommand(),
			verifyCommand(),
			versionCommand(),
		},
	}
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(ctx context.Context, args []string) error {
			fmt.Fprintln(stdout, version.Full())
			return nil
		},
	}
}
