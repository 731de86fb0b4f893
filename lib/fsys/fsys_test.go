// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fsys

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWalkFiltersAndSorts(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"b/two.DBR", "a/one.dbr", "a/readme.txt", "c.dbr"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := OS().Walk(root, ".dbr")
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	var relative []string
	for _, path := range paths {
		name, err := SlashRelative(root, path)
		if err != nil {
			t.Fatal(err)
		}
		relative = append(relative, name)
	}
	want := []string{"a/one.dbr", "b/two.DBR", "c.dbr"}
	if len(relative) != len(want) {
		t.Fatalf("Walk = %v, want %v", relative, want)
	}
	for i := range want {
		if relative[i] != want[i] {
			t.Errorf("Walk[%d] = %q, want %q", i, relative[i], want[i])
		}
	}

	all, err := OS().Walk(root, "")
	if err != nil || len(all) != 4 {
		t.Errorf("Walk all = %v, %v", all, err)
	}

	directories, err := OS().Subdirectories(root)
	if err != nil || len(directories) != 2 {
		t.Errorf("Subdirectories = %v, %v", directories, err)
	}
}

func TestChtimes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	provider := OS()
	file, err := provider.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	file.Close()

	stamp := time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)
	if err := provider.Chtimes(path, stamp); err != nil {
		t.Fatal(err)
	}
	info, err := provider.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), stamp)
	}
}

func TestContainedPath(t *testing.T) {
	dir := filepath.FromSlash("/out")
	tests := []struct {
		name string
		ok   bool
	}{
		{"records/a.dbr", true},
		{"/leading/slash.txt", true},
		{"../escape.txt", false},
		{"a/../../escape.txt", false},
		{"..", false},
		{"", false},
	}
	for _, test := range tests {
		_, ok := ContainedPath(dir, test.name)
		if ok != test.ok {
			t.Errorf("ContainedPath(%q) ok = %v, want %v", test.name, ok, test.ok)
		}
	}
}

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database", "mod.arz")

	err := WriteAtomic(OS(), path, func(file WriteFile) error {
		_, err := file.Write([]byte("first"))
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	failure := errors.New("record table overflow")
	err = WriteAtomic(OS(), path, func(file WriteFile) error {
		file.Write([]byte("partial"))
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("WriteAtomic error = %v, want %v", err, failure)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "first" {
		t.Errorf("content after a failed rewrite = %q, want the previous file", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}
