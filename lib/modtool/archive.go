// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modtool

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bureau-foundation/arzedit/lib/arc"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/progress"
)

func (e Env) arcOptions() []arc.Option {
	return []arc.Option{arc.WithCodec(e.Codec), arc.WithLogger(e.Logger)}
}

// openArchive opens and indexes the archive at path. The caller closes
// the returned file.
func (e Env) openArchive(path string) (*arc.Reader, fsys.ReadFile, error) {
	file, size, err := openSized(e.Provider, path)
	if err != nil {
		return nil, nil, err
	}
	reader, err := arc.NewReader(file, size, e.arcOptions()...)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return reader, file, nil
}

// UnpackArchive extracts every named entry of the archive at path into
// outDir.
func UnpackArchive(ctx context.Context, env Env, path, outDir string) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	env.Sink.Report(0, "reading "+path)

	reader, file, err := env.openArchive(path)
	if err != nil {
		return batch.Summary{}, err
	}
	defer file.Close()

	progress.Logf(env.Sink, "unpacking %d entries to %s", len(reader.Entries()), outDir)
	summary, err := reader.UnpackAll(ctx, outDir, env.Provider, env.Sink)
	if err != nil {
		return summary, err
	}
	env.finish(&summary, start)
	return summary, nil
}

// UnpackArchives extracts several archives. A single archive with an
// explicit outDir unpacks straight into it; otherwise each archive gets
// a folder named after it under outDir. An archive that cannot be
// opened is counted as one failure.
func UnpackArchives(ctx context.Context, env Env, paths []string, outDir string, explicitOut bool) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	var total batch.Summary
	quiet := env
	quiet.Sink = quietSink{env.Sink}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		target := outDir
		if len(paths) > 1 || !explicitOut {
			target = filepath.Join(outDir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		}
		progress.Logf(env.Sink, "unpacking %s", path)
		summary, err := UnpackArchive(ctx, quiet, path, target)
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		if err != nil {
			env.Sink.Error(err.Error())
			total.Fail(path, err)
			continue
		}
		total.Merge(summary)
	}
	env.finish(&total, start)
	return total, nil
}

// PackOptions selects the files packed into an archive.
type PackOptions struct {
	// Folder is the directory whose files are packed. Entry names are
	// paths relative to it, lowercased and slash separated.
	Folder string

	// Mask is a filepath.Match pattern applied case-insensitively to
	// file base names. Empty or "*" packs everything.
	Mask string

	Output string
}

// PackArchive writes the files under opts.Folder into a new archive.
// Files that cannot be opened are recorded as failures; errors writing
// the archive itself end the operation.
func PackArchive(ctx context.Context, env Env, opts PackOptions) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	summary, err := packFolder(ctx, env, opts, 15, 95)
	if err != nil {
		return summary, err
	}
	env.finish(&summary, start)
	return summary, nil
}

func packFolder(ctx context.Context, env Env, opts PackOptions, from, to int) (batch.Summary, error) {
	var summary batch.Summary
	env.Sink.Report(from, "listing "+opts.Folder)
	files, err := env.Provider.Walk(opts.Folder, "")
	if err != nil {
		return summary, fmt.Errorf("listing %s: %w", opts.Folder, err)
	}
	mask := strings.ToLower(opts.Mask)
	if mask == "" {
		mask = "*"
	}
	if _, err := filepath.Match(mask, ""); err != nil {
		return summary, fmt.Errorf("file mask %q: %w", opts.Mask, err)
	}

	err = fsys.WriteAtomic(env.Provider, opts.Output, func(sink fsys.WriteFile) error {
		writer, err := arc.NewWriter(sink, env.arcOptions()...)
		if err != nil {
			return err
		}
		for index, file := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			if matched, _ := filepath.Match(mask, strings.ToLower(filepath.Base(file))); !matched {
				continue
			}
			relative, err := fsys.SlashRelative(opts.Folder, file)
			if err != nil {
				summary.Fail(file, err)
				continue
			}
			name := strings.ToLower(relative)
			env.Sink.Report(progress.Scale(from, to, index, len(files)), "packing "+name)
			if err := packFile(env, writer, file, name); err != nil {
				if errors.Is(err, errSourceUnreadable) {
					progress.Errorf(env.Sink, "%v", err)
					summary.Fail(name, err)
					continue
				}
				return err
			}
			summary.Succeed()
		}
		if err := writer.Close(); err != nil {
			return fmt.Errorf("finishing %s: %w", opts.Output, err)
		}
		return nil
	})
	return summary, err
}

// errSourceUnreadable marks a source file that could not be opened or
// stat'ed. It fails that file only; write errors end the archive.
var errSourceUnreadable = errors.New("source unreadable")

func packFile(env Env, writer *arc.Writer, file, name string) error {
	source, err := env.Provider.Open(file)
	if err != nil {
		return fmt.Errorf("%w: %w", errSourceUnreadable, err)
	}
	defer source.Close()
	info, err := source.Stat()
	if err != nil {
		return fmt.Errorf("%w: %w", errSourceUnreadable, err)
	}
	if err := writer.WriteFromStream(name, info.ModTime(), source); err != nil {
		return fmt.Errorf("packing %s: %w", name, err)
	}
	return nil
}

// ListArchive returns the entries of the archive at path in table
// order.
func ListArchive(env Env, path string) ([]arc.Entry, error) {
	env = env.resolve()
	reader, file, err := env.openArchive(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return reader.Entries(), nil
}

// VerifyArchive checks every entry's stored checksum.
func VerifyArchive(ctx context.Context, env Env, path string) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	reader, file, err := env.openArchive(path)
	if err != nil {
		return batch.Summary{}, err
	}
	defer file.Close()

	var summary batch.Summary
	entries := reader.Entries()
	for index, entry := range entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		env.Sink.Report(progress.Scale(0, 95, index, len(entries)), "verifying "+entry.ListName())
		if err := reader.Verify(entry); err != nil {
			progress.Errorf(env.Sink, "%s: %v", entry.ListName(), err)
			summary.Fail(entry.ListName(), err)
			continue
		}
		summary.Succeed()
	}
	env.finish(&summary, start)
	return summary, nil
}

// RepackArchives merges the entries of every source, in order, into a
// new archive at output without recompressing them.
func RepackArchives(ctx context.Context, env Env, sources []string, output string) error {
	env = env.resolve()
	start := env.Clock.Now()

	readers := make([]*arc.Reader, 0, len(sources))
	for _, path := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		reader, file, err := env.openArchive(path)
		if err != nil {
			return err
		}
		defer file.Close()
		readers = append(readers, reader)
	}

	env.Sink.Report(20, "writing "+output)
	err := fsys.WriteAtomic(env.Provider, output, func(sink fsys.WriteFile) error {
		return arc.Merge(sink, readers, env.arcOptions()...)
	})
	if err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	var summary batch.Summary
	for _, reader := range readers {
		summary.Succeeded += len(reader.Entries())
	}
	env.finish(&summary, start)
	return nil
}

// quietSink forwards diagnostics but drops percentage reports, for
// operations nested inside another operation's progress range.
type quietSink struct{ progress.Sink }

func (quietSink) Report(int, string) {}
