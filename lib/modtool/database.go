// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package modtool

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bureau-foundation/arzedit/lib/arz"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/progress"
)

func (e Env) arzOptions(policy arz.CachePolicy) []arz.Option {
	return []arz.Option{arz.WithCodec(e.Codec), arz.WithLogger(e.Logger), arz.WithCachePolicy(policy)}
}

func (e Env) openDatabase(path string, policy arz.CachePolicy) (*arz.Reader, fsys.ReadFile, error) {
	file, size, err := openSized(e.Provider, path)
	if err != nil {
		return nil, nil, err
	}
	reader, err := arz.NewReader(file, size, e.arzOptions(policy)...)
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return reader, file, nil
}

// ExtractOptions controls [ExtractDatabase].
type ExtractOptions struct {
	Input  string
	OutDir string

	// Overwrite replaces existing record files. Without it they are
	// skipped.
	Overwrite bool

	// CacheCapacity bounds the decoded records held while extracting.
	// Records are discarded as soon as they are written, so a small
	// value is enough; zero leaves the cache unbounded.
	CacheCapacity int
}

// ExtractDatabase writes each record of a database as a text record
// file under OutDir, named after the record and stamped with its
// modification time.
func ExtractDatabase(ctx context.Context, env Env, opts ExtractOptions) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	env.Sink.Report(0, "reading "+opts.Input)

	reader, file, err := env.openDatabase(opts.Input, arz.CachePolicy{Capacity: opts.CacheCapacity})
	if err != nil {
		return batch.Summary{}, err
	}
	defer file.Close()

	progress.Logf(env.Sink, "extracting %d records to %s", reader.Len(), opts.OutDir)
	var summary batch.Summary
	for index := 0; index < reader.Len(); index++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := reader.Name(index)
		env.Sink.Report(progress.Scale(5, 95, index, reader.Len()), "extracting "+name)

		target, ok := fsys.ContainedPath(opts.OutDir, name)
		if !ok {
			summary.Skip(name, "record name escapes the output directory")
			continue
		}
		if !opts.Overwrite && exists(env.Provider, target) {
			summary.Skip(name, "file exists")
			continue
		}
		if err := extractRecord(env, reader, index, target); err != nil {
			progress.Errorf(env.Sink, "extracting %s: %v", name, err)
			summary.Fail(name, err)
			continue
		}
		summary.Succeed()
	}
	env.finish(&summary, start)
	return summary, nil
}

func extractRecord(env Env, reader *arz.Reader, index int, target string) error {
	record, err := reader.Record(index)
	if err != nil {
		return err
	}
	defer reader.Discard(index)

	if err := env.Provider.MkdirAll(filepath.Dir(target)); err != nil {
		return err
	}
	file, err := env.Provider.Create(target)
	if err != nil {
		return err
	}
	writeErr := record.WriteText(file)
	closeErr := file.Close()
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return closeErr
	}
	if !record.ModTime.IsZero() {
		return env.Provider.Chtimes(target, record.ModTime)
	}
	return nil
}

// ListDatabase returns the record table of the database at path.
func ListDatabase(env Env, path string) ([]arz.RecordInfo, error) {
	env = env.resolve()
	reader, file, err := env.openDatabase(path, arz.CachePolicy{})
	if err != nil {
		return nil, err
	}
	defer file.Close()
	infos := make([]arz.RecordInfo, reader.Len())
	for i := range infos {
		infos[i] = reader.Info(i)
	}
	return infos, nil
}

// ReadRecord decodes the record called name from the database at path.
func ReadRecord(env Env, path, name string) (*arz.Record, error) {
	env = env.resolve()
	reader, file, err := env.openDatabase(path, arz.CachePolicy{Capacity: 1})
	if err != nil {
		return nil, err
	}
	defer file.Close()
	index, ok := reader.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%s: no record %q", path, name)
	}
	return reader.Record(index)
}

// VerifyDatabase recomputes the footer checksums of the database at
// path and then decodes every record. A checksum mismatch is returned
// as the error; undecodable records are tallied as failures.
func VerifyDatabase(ctx context.Context, env Env, path string) (batch.Summary, error) {
	env = env.resolve()
	start := env.Clock.Now()
	reader, file, err := env.openDatabase(path, arz.CachePolicy{Capacity: 1})
	if err != nil {
		return batch.Summary{}, err
	}
	defer file.Close()

	env.Sink.Report(5, "checking footer")
	if err := reader.Verify(); err != nil {
		return batch.Summary{}, fmt.Errorf("%s: %w", path, err)
	}
	var summary batch.Summary
	for index := 0; index < reader.Len(); index++ {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		name := reader.Name(index)
		env.Sink.Report(progress.Scale(10, 95, index, reader.Len()), "decoding "+name)
		if _, err := reader.Record(index); err != nil {
			summary.Fail(name, err)
			continue
		}
		reader.Discard(index)
		summary.Succeed()
	}
	env.finish(&summary, start)
	return summary, nil
}
