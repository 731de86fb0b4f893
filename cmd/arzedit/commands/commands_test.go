// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/arzedit/cmd/arzedit/cli"
	"github.com/bureau-foundation/arzedit/lib/arz"
	"github.com/bureau-foundation/arzedit/lib/testutil"
)

const itemTemplate = `fileNameHistoryEntry
{
	Variable
	{
		name = "itemName"
		class = "variable"
		type = "string"
		defaultValue = ""
	}
	Variable
	{
		name = "itemLevel"
		class = "variable"
		type = "int"
		defaultValue = "1"
	}
}
`

// execute runs the command tree with args and returns what it printed
// on stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ARZEDIT_CONFIG", "")
	var buffer bytes.Buffer
	previous := stdout
	stdout = &buffer
	t.Cleanup(func() { stdout = previous })
	err := Root().Execute(context.Background(), args)
	return buffer.String(), err
}

func writeItemMod(t *testing.T, root string) string {
	t.Helper()
	mod := filepath.Join(root, "ItemMod")
	testutil.WriteTree(t, mod, map[string]string{
		"database/templates/item.tpl":   itemTemplate,
		"database/records/ring.dbr":     "templateName,database/templates/item.tpl,\nitemName,Ring,\nitemLevel,12,\n",
		"database/records/amulet.dbr":   "templateName,database/templates/item.tpl,\nitemName,Amulet,\n",
		"database/records/orphaned.dbr": "itemName,Nothing,\n",
	})
	return mod
}

func TestRootCommandTree(t *testing.T) {
	seen := make(map[string]bool)
	for _, command := range Root().Subcommands {
		if seen[command.Name] {
			t.Errorf("duplicate command %q", command.Name)
		}
		seen[command.Name] = true
		if command.Summary == "" {
			t.Errorf("%s has no summary", command.Name)
		}
		if command.Run == nil {
			t.Errorf("%s has no Run", command.Name)
		}
		if command.Name == "version" {
			continue
		}
		if command.Usage == "" || len(command.Examples) == 0 {
			t.Errorf("%s lacks usage or examples", command.Name)
		}
		flagSet := command.Flags()
		for _, global := range []string{"config", "verbose", "quiet", "encoding"} {
			if flagSet.Lookup(global) == nil {
				t.Errorf("%s does not accept --%s", command.Name, global)
			}
		}
	}
	for _, name := range []string{"build", "pack", "extract", "get", "arc", "unarc", "repack", "list", "verify", "version"} {
		if !seen[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestArchiveCommands(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "source")
	files := map[string]string{
		"items/ring.tex":  strings.Repeat("ring texture ", 200),
		"items/notes.txt": "not a texture",
		"readme.txt":      "hello",
	}
	testutil.WriteTree(t, source, files)
	archive := filepath.Join(root, "items.arc")

	if _, err := execute(t, "arc", source, archive); err != nil {
		t.Fatalf("arc: %v", err)
	}

	listing, err := execute(t, "list", archive)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := "items/notes.txt\nitems/ring.tex\nreadme.txt\n"; listing != want {
		t.Errorf("list = %q, want %q", listing, want)
	}
	long, err := execute(t, "list", "-l", "--offset", "1", "--limit", "1", archive)
	if err != nil {
		t.Fatalf("list -l: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(long), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "SIZE") || !strings.HasSuffix(lines[1], "items/ring.tex") {
		t.Errorf("list -l page = %q", long)
	}

	out := filepath.Join(root, "unpacked")
	if _, err := execute(t, "unarc", "-o", out, archive); err != nil {
		t.Fatalf("unarc: %v", err)
	}
	unpacked := testutil.ReadTree(t, out)
	for name, content := range files {
		if unpacked[name] != content {
			t.Errorf("%s = %q, want %q", name, unpacked[name], content)
		}
	}

	if _, err := execute(t, "verify", archive); err != nil {
		t.Errorf("verify: %v", err)
	}

	masked := filepath.Join(root, "textures.arc")
	if _, err := execute(t, "arc", "-m", "*.tex", source, masked); err != nil {
		t.Fatalf("arc -m: %v", err)
	}
	merged := filepath.Join(root, "merged.arc")
	if _, err := execute(t, "repack", merged, masked, archive); err != nil {
		t.Fatalf("repack: %v", err)
	}
	listing, err = execute(t, "list", merged)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(listing, "\n") != 4 {
		t.Errorf("merged listing = %q, want four entries", listing)
	}
	if _, err := execute(t, "repack", merged, masked); err == nil {
		t.Error("repack replaced an existing file without --overwrite")
	}
}

func TestDatabaseCommands(t *testing.T) {
	root := t.TempDir()
	mod := writeItemMod(t, root)
	database := filepath.Join(root, "ItemMod.arz")

	_, err := execute(t, "pack", "--encoding", "utf-8", mod, database)
	if code, ok := err.(*cli.ExitError); !ok || code.Code != 1 {
		t.Fatalf("pack with a broken record = %v, want exit code 1", err)
	}

	listing, err := execute(t, "list", database)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if want := "records/amulet.dbr\nrecords/ring.dbr\n"; listing != want {
		t.Errorf("list = %q, want %q", listing, want)
	}

	text, err := execute(t, "get", database, "records/ring.dbr")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if want := "templateName,database/templates/item.tpl,\nitemLevel,12,\nitemName,Ring,\n"; text != want {
		t.Errorf("get = %q, want %q", text, want)
	}
	text, err = execute(t, "get", database, "records/amulet.dbr")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "itemLevel,1,\n") {
		t.Errorf("amulet should carry the template default level: %q", text)
	}

	out := filepath.Join(root, "extracted")
	if _, err := execute(t, "extract", database, out); err != nil {
		t.Fatalf("extract: %v", err)
	}
	extracted := testutil.ReadTree(t, out)
	if len(extracted) != 2 || !strings.HasPrefix(extracted["records/ring.dbr"], "templateName,database/templates/item.tpl,\n") {
		t.Errorf("extracted = %v", extracted)
	}

	if _, err := execute(t, "verify", database); err != nil {
		t.Errorf("verify: %v", err)
	}

	if _, err := execute(t, "pack", mod, database); err == nil || !strings.Contains(err.Error(), "--overwrite") {
		t.Errorf("pack over an existing file = %v, want a refusal", err)
	}
}

func TestVerifyDamagedDatabase(t *testing.T) {
	root := t.TempDir()
	mod := writeItemMod(t, root)
	database := filepath.Join(root, "ItemMod.arz")
	execute(t, "pack", mod, database)

	data, err := os.ReadFile(database)
	if err != nil {
		t.Fatal(err)
	}
	data[arz.HeaderSize] ^= 0xff
	testutil.WriteFile(t, database, data)

	if _, err := execute(t, "verify", database); err == nil {
		t.Error("verify accepted a damaged database")
	}
	if _, err := execute(t, "verify", filepath.Join(root, "notes.txt")); err == nil {
		t.Error("verify accepted an unknown container type")
	}
}

func TestBuildCommand(t *testing.T) {
	root := t.TempDir()
	mod := writeItemMod(t, root)
	build := filepath.Join(root, "build")
	testutil.WriteTree(t, build, map[string]string{
		"resources/Items/ring.txt": "ring",
	})

	_, err := execute(t, "build", "--skip-assets", "--cache", mod, build)
	if code, ok := err.(*cli.ExitError); !ok || code.Code != 1 {
		t.Fatalf("build = %v, want exit code 1 for the orphaned record", err)
	}
	for _, path := range []string{
		filepath.Join(build, "database", "ItemMod.arz"),
		filepath.Join(build, "resources", "Items.arc"),
		filepath.Join(build, ".arzedit", "build.cache"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("build did not produce %s: %v", path, err)
		}
	}
}

func TestGlobalFlagValidation(t *testing.T) {
	root := t.TempDir()
	archive := filepath.Join(root, "x.arc")

	if _, err := execute(t, "list", "--verbose", "--quiet", archive); err == nil {
		t.Error("--verbose with --quiet was accepted")
	}
	if _, err := execute(t, "list", "--encoding", "ebcdic", archive); err == nil {
		t.Error("an unknown encoding was accepted")
	}
	config := filepath.Join(root, "arzedit.yaml")
	testutil.WriteFile(t, config, []byte("log:\n  level: loud\n"))
	if _, err := execute(t, "list", "--config", config, archive); err == nil || !strings.Contains(err.Error(), "log.level") {
		t.Errorf("invalid config = %v, want a log.level error", err)
	}
	if _, err := execute(t, "list", filepath.Join(root, "notes.txt")); err == nil {
		t.Error("list accepted an unknown container type")
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(output, "arc v3, arz 2.3") {
		t.Errorf("version output = %q", output)
	}
}

func TestPage(t *testing.T) {
	items := []int{0, 1, 2, 3, 4}
	tests := []struct {
		offset, limit int
		want          int
		first         int
	}{
		{0, 0, 5, 0},
		{1, 2, 2, 1},
		{4, 10, 1, 4},
		{9, 1, 0, -1},
	}
	for _, test := range tests {
		got := page(items, test.offset, test.limit)
		if len(got) != test.want || (len(got) > 0 && got[0] != test.first) {
			t.Errorf("page(%d, %d) = %v", test.offset, test.limit, got)
		}
	}
}
