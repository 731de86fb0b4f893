// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/modtool"
)

type extractParams struct {
	globalParams
	Overwrite bool `flag:"overwrite,y" desc:"replace record files that already exist"`
}

func extractCommand() *cli.Command {
	var params extractParams

	return &cli.Command{
		Name:    "extract",
		Summary: "Extract the records of a database as text files",
		Description: `Write every record of a database as a .dbr text file under
<folder> (default: the current folder), named after the record and
stamped with its modification time. Existing files are skipped unless
--overwrite is given.`,
		Usage: "arzedit extract [flags] <file.arz> [folder]",
		Examples: []cli.Example{{
			Description: "Extract the game database",
			Command:     "arzedit extract 'C:/Games/Grim Dawn/database/database.arz' gd-records",
		}},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("extract", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("usage: arzedit extract [flags] <file.arz> [folder]")
			}
			outDir := "."
			if len(args) == 2 {
				outDir = args[1]
			}
			session, err := params.open("extract")
			if err != nil {
				return err
			}
			summary, err := modtool.ExtractDatabase(ctx, session.env, modtool.ExtractOptions{
				Input:         args[0],
				OutDir:        outDir,
				Overwrite:     params.Overwrite,
				CacheCapacity: session.config.Database.RecordCacheCapacity,
			})
			return session.finish(summary, err)
		},
	}
}

type getParams struct {
	globalParams
}

func getCommand() *cli.Command {
	var params getParams

	return &cli.Command{
		Name:    "get",
		Summary: "Print one record of a database",
		Description: `Print a record in .dbr text form: one "name,value," line per
field, array values separated by ';'.`,
		Usage: "arzedit get [flags] <file.arz> <record>",
		Examples: []cli.Example{{
			Description: "Show the game engine settings",
			Command:     "arzedit get database.arz records/game/gameengine.dbr",
		}},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("get", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: arzedit get [flags] <file.arz> <record>")
			}
			session, err := params.open("get")
			if err != nil {
				return err
			}
			record, err := modtool.ReadRecord(session.env, args[0], args[1])
			if err != nil {
				return err
			}
			return record.WriteText(stdout)
		},
	}
}

// checkOutput refuses to replace an existing file unless asked to.
func checkOutput(path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
	}
	return nil
}
