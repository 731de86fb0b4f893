// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fsys

import (
	"fmt"
	"path/filepath"
)

// WriteAtomic creates path's parent directory and writes path through a
// temporary sibling ("<path>.tmp"). The temporary file is synced when
// the provider's files support it, closed, and renamed over path. On
// any failure it is removed and an existing file at path is left
// untouched.
func WriteAtomic(provider Provider, path string, write func(WriteFile) error) error {
	if err := provider.MkdirAll(filepath.Dir(path)); err != nil {
		return err
	}
	temporaryPath := path + ".tmp"
	file, err := provider.Create(temporaryPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", temporaryPath, err)
	}

	if err := write(file); err != nil {
		file.Close()
		provider.Remove(temporaryPath)
		return err
	}
	if syncer, ok := file.(interface{ Sync() error }); ok {
		if err := syncer.Sync(); err != nil {
			file.Close()
			provider.Remove(temporaryPath)
			return fmt.Errorf("syncing %s: %w", temporaryPath, err)
		}
	}
	if err := file.Close(); err != nil {
		provider.Remove(temporaryPath)
		return fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := provider.Rename(temporaryPath, path); err != nil {
		provider.Remove(temporaryPath)
		return fmt.Errorf("renaming %s into place: %w", path, err)
	}
	return nil
}
