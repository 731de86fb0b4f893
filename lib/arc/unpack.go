// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arc

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/progress"
)

// UnpackAll extracts every named entry into dir, creating directories
// as needed and restoring entry timestamps. Anonymous entries are
// skipped. A failing entry is recorded in the summary and the rest
// continue. Progress is reported in the range 10..90.
//
// The only error returned is the context's, when it is cancelled
// between entries.
func (r *Reader) UnpackAll(ctx context.Context, dir string, provider fsys.Provider, sink progress.Sink) (batch.Summary, error) {
	var summary batch.Summary
	total := len(r.entries)
	for index, entry := range r.entries {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		sink.Report(progress.Scale(10, 90, index, total), "unpacking "+entry.ListName())

		if entry.Name == "" {
			progress.Logf(sink, "skipping anonymous entry %d (type %d, %d bytes)", index, entry.Type, entry.DecompressedSize)
			summary.Skip(fmt.Sprintf("%s#%d", NullName, index), "entry has no name")
			continue
		}
		if err := r.unpackTo(dir, entry, provider); err != nil {
			progress.Errorf(sink, "unpacking %s: %v", entry.Name, err)
			summary.Fail(entry.Name, err)
			continue
		}
		summary.Succeed()
	}
	return summary, nil
}

func (r *Reader) unpackTo(dir string, entry Entry, provider fsys.Provider) error {
	target, ok := fsys.ContainedPath(dir, entry.Name)
	if !ok {
		return fmt.Errorf("entry name %q escapes the output directory", entry.Name)
	}
	if err := provider.MkdirAll(filepath.Dir(target)); err != nil {
		return err
	}
	file, err := provider.Create(target)
	if err != nil {
		return err
	}
	unpackErr := r.Unpack(entry, file)
	closeErr := file.Close()
	if unpackErr != nil {
		return unpackErr
	}
	if closeErr != nil {
		return closeErr
	}
	if !entry.ModTime.IsZero() {
		if err := provider.Chtimes(target, entry.ModTime); err != nil {
			return err
		}
	}
	return nil
}
