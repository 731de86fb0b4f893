// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/arzedit/lib/arc"
	"github.com/bureau-foundation/arzedit/lib/batch"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/textenc"
)

const (
	databasePrefix  = "database/"
	templatesPrefix = "database/templates/"
	extension       = ".tpl"
)

// Set is a collection of templates keyed by normalized path.
// A Set is not safe for concurrent mutation; once loaded and linked it
// may be read from multiple goroutines.
type Set struct {
	templates map[string]*Template
	logger    *slog.Logger
}

// NewSet returns an empty set. A nil logger discards output.
func NewSet(logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Set{templates: make(map[string]*Template), logger: logger}
}

// Len is the number of templates in the set.
func (s *Set) Len() int { return len(s.templates) }

// Add stores tpl under key, replacing any template already there.
func (s *Set) Add(key string, tpl *Template) {
	tpl.Key = key
	s.templates[key] = tpl
}

// Get returns the template stored under exactly key.
func (s *Set) Get(key string) (*Template, bool) {
	tpl, ok := s.templates[key]
	return tpl, ok
}

// Keys returns every key, sorted.
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.templates))
	for key := range s.templates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Resolve finds the template a record's templateName refers to. The
// name is tried as written, then under "database/templates/", then
// lowercased with forward slashes under the same prefix.
func (s *Set) Resolve(name string) (*Template, bool) {
	if tpl, ok := s.templates[name]; ok {
		return tpl, true
	}
	if !strings.HasPrefix(name, templatesPrefix) {
		if tpl, ok := s.templates[templatesPrefix+name]; ok {
			return tpl, true
		}
	}
	normalized := strings.ToLower(strings.ReplaceAll(name, `\`, "/"))
	if !strings.HasPrefix(normalized, templatesPrefix) {
		normalized = templatesPrefix + normalized
	}
	tpl, ok := s.templates[normalized]
	return tpl, ok
}

// FolderKey converts a path relative to a template base folder into a
// set key: lowercased, slash separated, and under "database/".
func FolderKey(relative string) string {
	key := strings.ToLower(strings.ReplaceAll(relative, `\`, "/"))
	key = strings.TrimLeft(key, "/")
	if !strings.HasPrefix(key, databasePrefix) {
		key = databasePrefix + key
	}
	return key
}

// NormalizeInclude converts an include variable's value into a set key.
func NormalizeInclude(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	value = strings.ReplaceAll(value, "%template_dir%", "")
	value = strings.ReplaceAll(value, `\`, "/")
	return strings.TrimLeft(value, "/")
}

// baseFolder climbs out of a "templates" folder and then a "database"
// folder, so that keys computed relative to the result start at the
// database level.
func baseFolder(root string) string {
	base := filepath.Clean(root)
	if strings.EqualFold(filepath.Base(base), "templates") {
		base = filepath.Dir(base)
	}
	if strings.EqualFold(filepath.Base(base), "database") {
		base = filepath.Dir(base)
	}
	return base
}

// LoadRoots parses every .tpl file under each root. Roots are applied
// in order, so a template in a later root replaces one with the same
// key from an earlier root. A file that fails to read or parse is
// recorded as skipped and logged; loading continues.
func (s *Set) LoadRoots(ctx context.Context, provider fsys.Provider, roots []string) (batch.Summary, error) {
	var summary batch.Summary
	for _, root := range roots {
		base := baseFolder(root)
		if !isDir(provider, filepath.Join(base, "database")) && !isDir(provider, filepath.Join(base, "templates")) {
			s.logger.Info("template root may not be a base folder", "root", root, "base", base)
		}

		files, err := provider.Walk(root, extension)
		if err != nil {
			return summary, fmt.Errorf("listing templates under %s: %w", root, err)
		}
		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			relative, err := fsys.SlashRelative(base, file)
			if err != nil {
				summary.Skip(file, err.Error())
				continue
			}
			tpl, err := parseFile(provider, file)
			if err != nil {
				s.logger.Warn("skipping template", "file", file, "error", err)
				summary.Skip(file, err.Error())
				continue
			}
			s.Add(FolderKey(relative), tpl)
			summary.Succeed()
		}
	}
	return summary, nil
}

func isDir(provider fsys.Provider, path string) bool {
	info, err := provider.Stat(path)
	return err == nil && info.IsDir()
}

func parseFile(provider fsys.Provider, path string) (*Template, error) {
	file, err := provider.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	lines, err := textenc.UTF8.ReadLines(file)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(path, lines)
}

// AddArchive loads every .tpl entry of a template archive. Archive
// templates never replace a key already present, so folders loaded
// earlier take precedence. Keys are placed under
// "database/templates/" unless the entry name already is.
func (s *Set) AddArchive(ctx context.Context, archive *arc.Reader) (batch.Summary, error) {
	var summary batch.Summary
	for _, entry := range archive.Entries() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if entry.Name == "" || !strings.HasSuffix(strings.ToLower(entry.Name), extension) {
			continue
		}
		key := strings.ToLower(strings.ReplaceAll(entry.Name, `\`, "/"))
		if !strings.HasPrefix(key, templatesPrefix) {
			key = templatesPrefix + key
		}
		if _, exists := s.templates[key]; exists {
			continue
		}

		data, err := archive.ReadEntry(entry)
		if err != nil {
			s.logger.Error("failed to load built-in template", "entry", entry.Name, "error", err)
			summary.Fail(entry.Name, err)
			continue
		}
		lines := textenc.UTF8.SplitLines(data)
		if len(lines) == 0 {
			summary.Skip(entry.Name, "empty template")
			continue
		}
		tpl, err := Parse(entry.Name, lines)
		if err != nil {
			s.logger.Error("failed to load built-in template", "entry", entry.Name, "error", err)
			summary.Fail(entry.Name, err)
			continue
		}
		s.Add(key, tpl)
		summary.Succeed()
	}
	return summary, nil
}

// FillIncludes links every include variable to its target template.
// Missing targets and include cycles are logged; cycles are still
// linked because lookups guard against them.
func (s *Set) FillIncludes() {
	for _, key := range s.Keys() {
		tpl := s.templates[key]
		tpl.includes = nil
		tpl.resolved = nil
		for _, target := range tpl.IncludeTargets() {
			included, ok := s.lookupInclude(target)
			if !ok {
				s.logger.Warn("included template not found", "template", key, "include", target)
				continue
			}
			if included == tpl || containsTemplate(tpl.includes, included) {
				s.logger.Warn("template includes itself or is included twice", "template", key, "include", target)
			}
			tpl.includes = append(tpl.includes, included)
		}
	}
	for _, key := range s.Keys() {
		tpl := s.templates[key]
		for _, included := range tpl.includes {
			if included != tpl && included.reaches(tpl, make(map[*Template]bool)) {
				s.logger.Warn("cyclic template include", "template", key, "include", included.Key)
			}
		}
	}
}

// lookupInclude tries the target as written, then under "database/"
// and "database/templates/".
func (s *Set) lookupInclude(target string) (*Template, bool) {
	for _, candidate := range []string{target, databasePrefix + target, templatesPrefix + target} {
		if tpl, ok := s.templates[candidate]; ok {
			return tpl, true
		}
	}
	return nil, false
}

func containsTemplate(list []*Template, tpl *Template) bool {
	for _, candidate := range list {
		if candidate == tpl {
			return true
		}
	}
	return false
}

// Fingerprint is a digest of every key and the content of the template
// stored under it. Two sets with the same fingerprint resolve every
// record identically.
func (s *Set) Fingerprint() [32]byte {
	hasher := blake3.New()
	for _, key := range s.Keys() {
		hasher.Write([]byte(key))
		hasher.Write([]byte{0})
		digest := s.templates[key].digest
		hasher.Write(digest[:])
	}
	var sum [32]byte
	copy(sum[:], hasher.Sum(nil))
	return sum
}
