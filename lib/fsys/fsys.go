// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsys is the filesystem seam between the batch operations and
// the host. Operations enumerate sources by extension and open byte
// streams through a [Provider]; the command-line tool passes [OS], and
// a GUI or test harness can pass its own.
package fsys

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ReadFile is an open source file. Container readers need random
// access, so it is an io.ReaderAt as well as a stream.
type ReadFile interface {
	io.Reader
	io.ReaderAt
	io.Closer
	Stat() (fs.FileInfo, error)
}

// WriteFile is an open destination. Archive writers seek back to the
// start to rewrite the header, so it must be seekable.
type WriteFile interface {
	io.Writer
	io.Seeker
	io.Closer
}

// Provider abstracts the filesystem operations the batch layer needs.
type Provider interface {
	Stat(path string) (fs.FileInfo, error)
	Open(path string) (ReadFile, error)
	Create(path string) (WriteFile, error)
	MkdirAll(path string) error
	Chtimes(path string, modified time.Time) error
	Rename(from, to string) error
	Remove(path string) error

	// Walk returns every regular file under root whose extension
	// matches ext case-insensitively (ext includes the dot; "" matches
	// all files). Paths are joined with root and sorted so that batch
	// order is stable across platforms.
	Walk(root, ext string) ([]string, error)

	// Subdirectories returns the immediate child directories of root,
	// sorted by name.
	Subdirectories(root string) ([]string, error)
}

// OS returns the host filesystem provider.
func OS() Provider { return osProvider{} }

type osProvider struct{}

func (osProvider) Stat(path string) (fs.FileInfo, error) { return os.Stat(path) }

func (osProvider) Open(path string) (ReadFile, error) { return os.Open(path) }

func (osProvider) Create(path string) (WriteFile, error) { return os.Create(path) }

func (osProvider) MkdirAll(path string) error { return os.MkdirAll(path, 0o755) }

func (osProvider) Chtimes(path string, modified time.Time) error {
	return os.Chtimes(path, modified, modified)
}

func (osProvider) Rename(from, to string) error { return os.Rename(from, to) }

func (osProvider) Remove(path string) error { return os.Remove(path) }

func (osProvider) Walk(root, ext string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		if ext == "" || strings.EqualFold(filepath.Ext(path), ext) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(paths, func(i, j int) bool {
		return filepath.ToSlash(paths[i]) < filepath.ToSlash(paths[j])
	})
	return paths, nil
}

func (osProvider) Subdirectories(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var directories []string
	for _, entry := range entries {
		if entry.IsDir() {
			directories = append(directories, filepath.Join(root, entry.Name()))
		}
	}
	return directories, nil
}

// SlashRelative returns path relative to base with forward slashes.
// Archive and database names are always slash separated regardless of
// the host.
func SlashRelative(base, path string) (string, error) {
	relative, err := filepath.Rel(base, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(relative), nil
}

// ContainedPath joins a slash-separated entry name onto dir and
// reports false when the result would land outside dir.
func ContainedPath(dir, name string) (string, bool) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimLeft(name, "/\\")))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", false
	}
	return filepath.Join(dir, cleaned), true
}
