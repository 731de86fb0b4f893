// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/arc"
	"github.com/bureau-foundation/arzedit/lib/arz"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/modtool"
)

// containerKind picks archive or database handling from a file's
// extension.
func containerKind(path string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".arc", ".arz":
		return ext, nil
	default:
		return "", fmt.Errorf("%s: unknown container type %q (want .arc or .arz)", path, ext)
	}
}

type listParams struct {
	globalParams
	Long   bool `flag:"long,l" desc:"show sizes, types and modification times"`
	Offset int  `flag:"offset" desc:"skip this many names"`
	Limit  int  `flag:"limit" desc:"print at most this many names (0: all)"`
}

func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List the entries of an archive or the records of a database",
		Description: `Print one name per line, in table order. Anonymous archive entries
are listed as "(null)". --offset and --limit page through large
databases.`,
		Usage: "arzedit list [flags] <file.arc|file.arz>",
		Examples: []cli.Example{
			{
				Description: "Show archive contents with sizes",
				Command:     "arzedit list -l resources/Items.arc",
			},
			{
				Description: "Show the first hundred records",
				Command:     "arzedit list --limit 100 database.arz",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: arzedit list [flags] <file.arc|file.arz>")
			}
			if params.Offset < 0 || params.Limit < 0 {
				return fmt.Errorf("--offset and --limit must not be negative")
			}
			kind, err := containerKind(args[0])
			if err != nil {
				return err
			}
			session, err := params.open("list")
			if err != nil {
				return err
			}
			if kind == ".arc" {
				entries, err := modtool.ListArchive(session.env, args[0])
				if err != nil {
					return err
				}
				return printArchive(stdout, page(entries, params.Offset, params.Limit), params.Long)
			}
			infos, err := modtool.ListDatabase(session.env, args[0])
			if err != nil {
				return err
			}
			return printDatabase(stdout, page(infos, params.Offset, params.Limit), params.Long)
		},
	}
}

// page returns up to limit items starting at offset; a zero limit means
// no limit.
func page[T any](items []T, offset, limit int) []T {
	offset = min(offset, len(items))
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func printArchive(w io.Writer, entries []arc.Entry, long bool) error {
	if !long {
		for _, entry := range entries {
			fmt.Fprintln(w, entry.ListName())
		}
		return nil
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tSTORED\tMODIFIED\tNAME")
	for _, entry := range entries {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", entry.DecompressedSize, entry.CompressedSize,
			formatTime(entry.ModTime), entry.ListName())
	}
	return tw.Flush()
}

func printDatabase(w io.Writer, infos []arz.RecordInfo, long bool) error {
	if !long {
		for _, info := range infos {
			fmt.Fprintln(w, info.Name)
		}
		return nil
	}
	tw := tabwriter.NewWriter(w, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SIZE\tSTORED\tMODIFIED\tTYPE\tNAME")
	for _, info := range infos {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\n", info.DecompressedSize, info.CompressedSize,
			formatTime(info.ModTime), info.Type, info.Name)
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.DateTime)
}

type verifyParams struct {
	globalParams
}

func verifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Check the checksums of archives and databases",
		Description: `For an archive, check every entry's stored checksum against its
unpacked content. For a database, check the four footer checksums and
then decode every record. Exits 1 if anything is damaged.`,
		Usage: "arzedit verify [flags] <file.arc|file.arz>...",
		Examples: []cli.Example{{
			Description: "Check a freshly built mod",
			Command:     "arzedit verify build/database/MyMod.arz build/resources/*.arc",
		}},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("verify", &params)
		},
		Run: func(ctx context.Context, args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: arzedit verify [flags] <file.arc|file.arz>...")
			}
			session, err := params.open("verify")
			if err != nil {
				return err
			}

			var total batch.Summary
			for _, path := range args {
				kind, err := containerKind(path)
				if err != nil {
					session.sink.Error(err.Error())
					total.Fail(path, err)
					continue
				}
				var summary batch.Summary
				if kind == ".arc" {
					summary, err = modtool.VerifyArchive(ctx, session.env, path)
				} else {
					summary, err = modtool.VerifyDatabase(ctx, session.env, path)
				}
				if ctx.Err() != nil {
					return session.finish(total, ctx.Err())
				}
				if err != nil {
					session.sink.Error(err.Error())
					total.Fail(path, err)
					continue
				}
				total.Merge(summary)
			}
			if len(args) > 1 {
				session.logger.Info("verified", "files", len(args), "result", total.String())
			}
			return session.finish(total, nil)
		},
	}
}
