// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/asset"
	"github.com/bureau-foundation/arzedit/lib/config"
	"github.com/bureau-foundation/arzedit/lib/modtool"
)

// templateParams select template sources and record conversion, shared
// by build and pack.
type templateParams struct {
	Templates  []string `flag:"templates,t" desc:"extra template folders searched after the mod, later ones win (comma-separated or repeated)"`
	Builtin    string   `flag:"builtin" desc:"archive of stock templates used for templates no folder provides"`
	Subdirs    []string `flag:"subdir,s" desc:"only build records under database/<subdir> (repeatable)"`
	NoDefaults bool     `flag:"no-defaults" desc:"write only the fields a record sets instead of every template field"`
	Cache      bool     `flag:"cache" desc:"reuse records whose source is unchanged since the last cached build"`
}

// databaseOptions merges the flags over the configuration.
func (p templateParams) databaseOptions(cfg *config.Config) modtool.DatabaseOptions {
	opts := modtool.DatabaseOptions{
		TemplateRoots:  append(append([]string(nil), cfg.Templates.Roots...), p.Templates...),
		BuiltinArchive: cfg.Templates.BuiltinArchive,
		Subdirs:        p.Subdirs,
		FillDefaults:   cfg.Build.FillDefaults && !p.NoDefaults,
	}
	if p.Builtin != "" {
		opts.BuiltinArchive = p.Builtin
	}
	return opts
}

type buildParams struct {
	globalParams
	templateParams
	GameFolder    string `flag:"game-folder,g" desc:"game folder holding the asset compilers (overrides config)"`
	SkipDatabase  bool   `flag:"skip-db,D" desc:"skip building the database"`
	SkipAssets    bool   `flag:"skip-assets,A" desc:"skip compiling assets"`
	SkipResources bool   `flag:"skip-res,R" desc:"skip packing the resources folder"`
}

func buildCommand() *cli.Command {
	var params buildParams

	return &cli.Command{
		Name:    "build",
		Summary: "Build a mod: assets, database and resource archives",
		Description: `Build a mod folder in three stages:

  1. Compile every asset descriptor under <mod>/assets with the game's
     compilers, writing into <build>/resources. Generic assets are
     copied.
  2. Convert every record under <mod>/database into
     <build>/database/<mod name>.arz, resolving fields against the
     templates in the mod, the --templates folders and the --builtin
     archive.
  3. Pack each folder under <build>/resources into <folder>.arc.

A record that fails to build is reported and left out; the remaining
records are still written. The exit code is 1 if anything failed.

<build> defaults to the mod folder.`,
		Usage: "arzedit build [flags] <mod> [build]",
		Examples: []cli.Example{
			{
				Description: "Build a mod using the game's templates",
				Command:     "arzedit build -g 'C:/Games/Grim Dawn' -t 'C:/Games/Grim Dawn/templates' mods/MyMod",
			},
			{
				Description: "Rebuild only the database, reusing unchanged records",
				Command:     "arzedit build -A -R --cache mods/MyMod build/MyMod",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("build", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return fmt.Errorf("usage: arzedit build [flags] <mod> [build]")
			}
			modDir := args[0]
			buildDir := modDir
			if len(args) == 2 {
				buildDir = args[1]
			}

			session, err := params.open("build")
			if err != nil {
				return err
			}
			cfg := session.config

			gameFolder := cfg.Tools.GameFolder
			if params.GameFolder != "" {
				gameFolder = params.GameFolder
			}
			database := params.databaseOptions(cfg)
			if params.Cache || cfg.Build.Cache.Enabled {
				database.CachePath = cfg.CachePath(buildDir)
			}

			summary, err := modtool.Build(ctx, session.env, modtool.BuildOptions{
				ModDir:        modDir,
				BuildDir:      buildDir,
				SkipAssets:    params.SkipAssets || cfg.Build.SkipAssets,
				SkipDatabase:  params.SkipDatabase || cfg.Build.SkipDatabase,
				SkipResources: params.SkipResources || cfg.Build.SkipResources,
				Database:      database,
				Runner:        asset.ExecRunner{ToolsDir: gameFolder},
			})
			return session.finish(summary, err)
		},
	}
}

type packParams struct {
	globalParams
	templateParams
	Files     []string `flag:"file,f" desc:"build only these record files (repeatable)"`
	Overwrite bool     `flag:"overwrite,y" desc:"replace an existing output file"`
}

func packCommand() *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Pack a folder of records into a database",
		Description: `Convert the record files under <folder> into a database file.

Record names are the file paths relative to <folder>, lowercased. When
<folder> has a database/ subfolder that prefix is dropped, so a mod
folder and its database folder produce the same names. Templates are
looked up in <folder> first, then in the --templates folders, then in
the --builtin archive.`,
		Usage: "arzedit pack [flags] <folder> <file.arz>",
		Examples: []cli.Example{
			{
				Description: "Pack a mod's records against the game templates",
				Command:     "arzedit pack -t gd/templates mods/MyMod MyMod.arz",
			},
			{
				Description: "Pack a single record for testing",
				Command:     "arzedit pack -y -f mods/MyMod/records/items/sword.dbr mods/MyMod test.arz",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("pack", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("usage: arzedit pack [flags] <folder> <file.arz>")
			}
			folder, output := args[0], args[1]
			if err := checkOutput(output, params.Overwrite); err != nil {
				return err
			}

			session, err := params.open("pack")
			if err != nil {
				return err
			}
			opts := params.databaseOptions(session.config)
			opts.ModDir = folder
			opts.Output = output
			opts.Files = params.Files
			if params.Cache || session.config.Build.Cache.Enabled {
				opts.CachePath = session.config.CachePath(folder)
			}

			summary, err := modtool.BuildDatabase(ctx, session.env, opts)
			return session.finish(summary, err)
		},
	}
}
