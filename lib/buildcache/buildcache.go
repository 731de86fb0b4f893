// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package buildcache remembers built records between database builds.
//
// Each record is stored with the digest of the source text it was
// built from and its fields with every string spelled out, so a hit
// can be replayed into any string table. The whole cache belongs to
// one template set and one set of builder [Settings]: when either
// changes, every record is considered stale.
//
// The file is a zstd frame holding a CBOR manifest.
package buildcache

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/bureau-foundation/arzedit/lib/arz"
	"github.com/bureau-foundation/arzedit/lib/binhash"
	"github.com/bureau-foundation/arzedit/lib/codec"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/stringtable"
)

// formatVersion changes whenever the manifest layout changes.
const formatVersion = 2

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("buildcache: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<30))
	if err != nil {
		panic("buildcache: zstd decoder initialization failed: " + err.Error())
	}
}

// Field is one record entry with string values resolved.
type Field struct {
	Name string `cbor:"name"`
	Type uint16 `cbor:"type"`
	// Slots holds Int, Bool and Real values (Real as float bits).
	Slots []int32 `cbor:"slots,omitempty"`
	// Strings holds String values.
	Strings []string `cbor:"strings,omitempty"`
}

// Entry is one cached record.
type Entry struct {
	Source binhash.Digest `cbor:"source"`
	Type   string         `cbor:"type"`
	Fields []Field        `cbor:"fields"`
}

// Settings are the builder options a record depends on besides its
// source text and the templates.
type Settings struct {
	FillDefaults bool `cbor:"fill_defaults"`

	// TextEncoding is the code page record sources were decoded with.
	TextEncoding string `cbor:"text_encoding"`
}

type manifest struct {
	Version   int              `cbor:"version"`
	Templates binhash.Digest   `cbor:"templates"`
	Settings  Settings         `cbor:"settings"`
	Records   map[string]Entry `cbor:"records"`
}

// Cache holds cached records for one template fingerprint and builder
// settings. It is used by one goroutine at a time.
type Cache struct {
	templates binhash.Digest
	settings  Settings
	previous  map[string]Entry
	current   map[string]Entry
	hits      int
	misses    int
	logger    *slog.Logger
}

// New returns an empty cache for the given template fingerprint and
// settings.
func New(templates binhash.Digest, settings Settings, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		templates: templates,
		settings:  settings,
		previous:  make(map[string]Entry),
		current:   make(map[string]Entry),
		logger:    logger,
	}
}

// Load reads the cache at path. A missing, unreadable or stale file
// yields an empty cache; only the reason is logged.
func Load(provider fsys.Provider, path string, templates binhash.Digest, settings Settings, logger *slog.Logger) *Cache {
	cache := New(templates, settings, logger)
	previous, err := readManifest(provider, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return cache
	case err != nil:
		cache.logger.Warn("ignoring unreadable build cache", "path", path, "error", err)
		return cache
	case previous.Version != formatVersion:
		cache.logger.Info("ignoring build cache from another version", "path", path, "version", previous.Version)
		return cache
	case previous.Templates != templates:
		cache.logger.Info("templates changed, rebuilding every record", "path", path)
		return cache
	case previous.Settings != settings:
		cache.logger.Info("build settings changed, rebuilding every record",
			"path", path,
			"fill_defaults", settings.FillDefaults,
			"text_encoding", settings.TextEncoding,
		)
		return cache
	}
	if previous.Records != nil {
		cache.previous = previous.Records
	}
	return cache
}

func readManifest(provider fsys.Provider, path string) (manifest, error) {
	var loaded manifest
	file, err := provider.Open(path)
	if err != nil {
		return loaded, err
	}
	defer file.Close()
	compressed, err := io.ReadAll(file)
	if err != nil {
		return loaded, err
	}
	data, err := zstdDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return loaded, fmt.Errorf("zstd decompress: %w", err)
	}
	if err := codec.Unmarshal(data, &loaded); err != nil {
		return loaded, fmt.Errorf("decoding manifest: %w", err)
	}
	return loaded, nil
}

// Hits is the number of records replayed from the cache.
func (c *Cache) Hits() int { return c.hits }

// Misses is the number of lookups that found no usable entry.
func (c *Cache) Misses() int { return c.misses }

// Len is the number of records that will be saved.
func (c *Cache) Len() int { return len(c.current) }

// Replay rebuilds a cached record into table when the cached entry
// was built from source text with the same digest. A hit is carried
// into the next saved cache.
func (c *Cache) Replay(name string, source binhash.Digest, modTime time.Time, table *stringtable.Table) (*arz.Record, bool) {
	entry, ok := c.previous[name]
	if !ok || entry.Source != source {
		c.misses++
		return nil, false
	}
	c.hits++
	c.current[name] = entry

	table.Add(name)
	record := arz.NewRecord(name, entry.Type, modTime, table, c.logger)
	record.Entries = make([]arz.Entry, len(entry.Fields))
	for i, field := range entry.Fields {
		replayed := arz.Entry{Type: arz.EntryType(field.Type), NameID: table.Add(field.Name)}
		if replayed.Type == arz.String {
			replayed.Values = make([]int32, len(field.Strings))
			for j, value := range field.Strings {
				replayed.Values[j] = table.Add(value)
			}
		} else {
			replayed.Values = append([]int32(nil), field.Slots...)
		}
		record.Entries[i] = replayed
	}
	return record, true
}

// Store records a freshly built record.
func (c *Cache) Store(source binhash.Digest, record *arz.Record) {
	entry := Entry{Source: source, Type: record.Type, Fields: make([]Field, len(record.Entries))}
	for i, recordEntry := range record.Entries {
		field := Field{Name: record.EntryName(recordEntry), Type: uint16(recordEntry.Type)}
		if recordEntry.Type == arz.String {
			field.Strings = make([]string, len(recordEntry.Values))
			for j := range recordEntry.Values {
				field.Strings[j] = record.StringValue(recordEntry, j)
			}
		} else {
			field.Slots = append([]int32(nil), recordEntry.Values...)
		}
		entry.Fields[i] = field
	}
	c.current[record.Name] = entry
}

// Save writes every record replayed or stored since the cache was
// loaded. Records not seen in this build are dropped.
func (c *Cache) Save(provider fsys.Provider, path string) error {
	data, err := codec.Marshal(manifest{
		Version:   formatVersion,
		Templates: c.templates,
		Settings:  c.settings,
		Records:   c.current,
	})
	if err != nil {
		return fmt.Errorf("encoding build cache: %w", err)
	}
	return fsys.WriteAtomic(provider, path, func(file fsys.WriteFile) error {
		if _, err := file.Write(zstdEncoder.EncodeAll(data, nil)); err != nil {
			return fmt.Errorf("writing build cache %s: %w", path, err)
		}
		return nil
	})
}
