// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/modtool"
)

type arcParams struct {
	globalParams
	Mask string `flag:"mask,m" desc:"only pack files whose name matches this pattern (e.g. *.tex)"`
}

func arcCommand() *cli.Command {
	var params arcParams

	return &cli.Command{
		Name:    "arc",
		Summary: "Pack a folder into an archive",
		Description: `Pack every file under <folder> into a new archive. Entry names are
the paths relative to <folder>, lowercased with forward slashes. Each
256 KiB block is LZ4 compressed when that makes it smaller.`,
		Usage: "arzedit arc [flags] <folder> <file.arc>",
		Examples: []cli.Example{
			{
				Description: "Pack a texture folder",
				Command:     "arzedit arc resources/Items Items.arc",
			},
			{
				Description: "Pack only the compiled textures",
				Command:     "arzedit arc -m '*.tex' resources/Items Items.arc",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("arc", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: arzedit arc [flags] <folder> <file.arc>")
			}
			session, err := params.open("arc")
			if err != nil {
				return err
			}
			summary, err := modtool.PackArchive(ctx, session.env, modtool.PackOptions{
				Folder: args[0],
				Mask:   params.Mask,
				Output: args[1],
			})
			return session.finish(summary, err)
		},
	}
}

type unarcParams struct {
	globalParams
	OutPath string `flag:"out-path,o" desc:"folder to unpack into (default: current folder)"`
}

func unarcCommand() *cli.Command {
	var params unarcParams

	return &cli.Command{
		Name:    "unarc",
		Summary: "Unpack archives",
		Description: `Unpack every entry of each archive. With a single archive and
--out-path the entries go straight into that folder; otherwise each
archive is unpacked into a folder named after it. An entry that fails
to unpack is reported and the rest continue.`,
		Usage: "arzedit unarc [flags] <file.arc>...",
		Examples: []cli.Example{
			{
				Description: "Unpack the game's item textures",
				Command:     "arzedit unarc -o items 'C:/Games/Grim Dawn/resources/Items.arc'",
			},
			{
				Description: "Unpack several archives side by side",
				Command:     "arzedit unarc -o unpacked resources/*.arc",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("unarc", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: arzedit unarc [flags] <file.arc>...")
			}
			session, err := params.open("unarc")
			if err != nil {
				return err
			}
			outDir := params.OutPath
			if outDir == "" {
				outDir = "."
			}
			summary, err := modtool.UnpackArchives(ctx, session.env, args, outDir, params.OutPath != "")
			return session.finish(summary, err)
		},
	}
}

type repackParams struct {
	globalParams
	Overwrite bool `flag:"overwrite,y" desc:"replace an existing output file"`
}

func repackCommand() *cli.Command {
	var params repackParams

	return &cli.Command{
		Name:    "repack",
		Summary: "Merge archives into one without recompressing",
		Description: `Copy the entries of every source archive, in order, into a new
archive. Stored blocks are copied as they are, so nothing is
recompressed.`,
		Usage: "arzedit repack [flags] <output.arc> <source.arc>...",
		Examples: []cli.Example{{
			Description: "Combine two texture archives",
			Command:     "arzedit repack Textures.arc Textures1.arc Textures2.arc",
		}},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("repack", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("usage: arzedit repack [flags] <output.arc> <source.arc>...")
			}
			if err := checkOutput(args[0], params.Overwrite); err != nil {
				return err
			}
			session, err := params.open("repack")
			if err != nil {
				return err
			}
			return session.finish(batch.Summary{}, modtool.RepackArchives(ctx, session.env, args[1:], args[0]))
		},
	}
}
