// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/bureau-foundation/arzedit/lib/blockcodec"
	"github.com/bureau-foundation/arzedit/lib/bytecodec"
	"github.com/bureau-foundation/arzedit/lib/checksum"
	"github.com/bureau-foundation/arzedit/lib/stringtable"
	"github.com/bureau-foundation/arzedit/lib/textenc"
)

// Option configures a [Reader] or [Writer].
type Option func(*options)

type options struct {
	codec  textenc.Codec
	logger *slog.Logger
	cache  CachePolicy
}

// WithCodec sets the code page of the string table. The default is
// [textenc.Default].
func WithCodec(codec textenc.Codec) Option {
	return func(o *options) { o.codec = codec }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithCachePolicy bounds the decoded-record cache of a Reader. The
// default keeps every decoded record.
func WithCachePolicy(policy CachePolicy) Option {
	return func(o *options) { o.cache = policy }
}

func buildOptions(opts []Option) options {
	resolved := options{codec: textenc.Default}
	for _, opt := range opts {
		opt(&resolved)
	}
	if resolved.logger == nil {
		resolved.logger = slog.New(slog.DiscardHandler)
	}
	return resolved
}

// RecordInfo is the record table metadata for one record.
type RecordInfo struct {
	NameID           int32
	Name             string
	Type             string
	Offset           int32
	CompressedSize   int32
	DecompressedSize int32
	ModTime          time.Time
}

// Reader gives access to the records of a database.
type Reader struct {
	source  io.ReaderAt
	size    int64
	header  Header
	strings *stringtable.Table
	infos   []RecordInfo
	byName  map[string]int
	cache   *recordCache
	logger  *slog.Logger
}

// NewReader parses the header, string table and record table of the
// database in source, which holds size bytes. Record payloads are
// decoded by [Reader.Record]. Structural problems return an error
// wrapping [ErrMalformed].
func NewReader(source io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	resolved := buildOptions(opts)
	reader := &Reader{
		source: source,
		size:   size,
		cache:  newRecordCache(resolved.cache),
		logger: resolved.logger,
	}

	if size < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrMalformed, size)
	}
	if err := binary.Read(io.NewSectionReader(source, 0, HeaderSize), binary.LittleEndian, &reader.header); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrMalformed, err)
	}
	if err := reader.validateHeader(); err != nil {
		return nil, err
	}
	header := reader.header

	stringData, err := reader.readRange(int64(header.StringTableStart), int64(header.StringTableSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading string table: %v", ErrMalformed, err)
	}
	reader.strings = stringtable.Load(stringData, resolved.codec, resolved.logger)

	tableData, err := reader.readRange(int64(header.RecordTableStart), int64(header.RecordTableSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading record table: %v", ErrMalformed, err)
	}
	if err := reader.parseRecordTable(tableData, resolved.codec); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *Reader) validateHeader() error {
	header := r.header
	if header.Magic != Magic {
		return fmt.Errorf("%w: bad magic %d", ErrMalformed, header.Magic)
	}
	if header.Version != Version {
		r.logger.Warn("unexpected database version", "version", header.Version)
	}
	if header.RecordTableStart < HeaderSize || header.RecordTableSize < 0 || header.RecordTableEntries < 0 ||
		header.StringTableStart < HeaderSize || header.StringTableSize < 0 {
		return fmt.Errorf("%w: negative count or offset in header", ErrMalformed)
	}
	if end := int64(header.RecordTableStart) + int64(header.RecordTableSize); end > r.size {
		return fmt.Errorf("%w: record table ends at %d but database is %d bytes", ErrMalformed, end, r.size)
	}
	if end := header.FooterStart(); end > r.size {
		return fmt.Errorf("%w: string table ends at %d but database is %d bytes", ErrMalformed, end, r.size)
	}
	return nil
}

func (r *Reader) parseRecordTable(data []byte, codec textenc.Codec) error {
	count := int(r.header.RecordTableEntries)
	// The smallest record table entry is 28 bytes.
	if count > len(data)/28 {
		return fmt.Errorf("%w: record table of %d bytes cannot hold %d records",
			ErrMalformed, len(data), count)
	}
	table := bytecodec.NewReader(bytes.NewReader(data))
	r.infos = make([]RecordInfo, count)
	for i := range r.infos {
		nameID := table.Int32()
		recordType := table.String()
		info := RecordInfo{
			NameID:           nameID,
			Type:             codec.Decode([]byte(recordType)),
			Offset:           table.Int32(),
			CompressedSize:   table.Int32(),
			DecompressedSize: table.Int32(),
			ModTime:          bytecodec.FromFileTime(table.Int64()),
		}
		if err := table.Err(); err != nil {
			return fmt.Errorf("%w: record table entry %d: %v", ErrMalformed, i, err)
		}
		info.Name = r.strings.Get(nameID)
		r.infos[i] = info
	}
	return nil
}

// readRange reads length bytes at offset.
func (r *Reader) readRange(offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > r.size {
		return nil, fmt.Errorf("range [%d, +%d) outside database of %d bytes", offset, length, r.size)
	}
	buffer := make([]byte, length)
	n, err := r.source.ReadAt(buffer, offset)
	if n == len(buffer) {
		return buffer, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, err
}

// Header returns the parsed header.
func (r *Reader) Header() Header { return r.header }

// Strings returns the database string table.
func (r *Reader) Strings() *stringtable.Table { return r.strings }

// Len is the number of records.
func (r *Reader) Len() int { return len(r.infos) }

// Info returns the record table metadata of record i.
func (r *Reader) Info(i int) RecordInfo { return r.infos[i] }

// Name returns the name of record i.
func (r *Reader) Name(i int) string { return r.infos[i].Name }

// Names returns every record name in table order.
func (r *Reader) Names() []string {
	return r.NamesRange(0, len(r.infos))
}

// NamesRange returns up to count names starting at record start. The
// range is clamped to the table.
func (r *Reader) NamesRange(start, count int) []string {
	start = min(max(start, 0), len(r.infos))
	end := min(start+max(count, 0), len(r.infos))
	names := make([]string, 0, end-start)
	for _, info := range r.infos[start:end] {
		names = append(names, info.Name)
	}
	return names
}

// Lookup returns the index of the first record with the given name.
func (r *Reader) Lookup(name string) (int, bool) {
	if r.byName == nil {
		r.byName = make(map[string]int, len(r.infos))
		for i, info := range r.infos {
			if _, exists := r.byName[info.Name]; !exists {
				r.byName[info.Name] = i
			}
		}
	}
	index, ok := r.byName[name]
	return index, ok
}

// Record decodes record i, or returns it from the cache. A record with
// no stored payload decodes to no entries. A payload that ends inside
// an entry is logged and the complete entries before it are kept.
func (r *Reader) Record(i int) (*Record, error) {
	if i < 0 || i >= len(r.infos) {
		return nil, fmt.Errorf("record index %d out of range [0, %d)", i, len(r.infos))
	}
	if record, ok := r.cache.get(i); ok {
		return record, nil
	}

	info := r.infos[i]
	record := NewRecord(info.Name, info.Type, info.ModTime, r.strings, r.logger)
	if info.CompressedSize <= 0 || info.DecompressedSize <= 0 {
		r.logger.Warn("record has no payload",
			"record", info.Name,
			"compressed_size", info.CompressedSize,
			"decompressed_size", info.DecompressedSize,
		)
		r.cache.add(i, record)
		return record, nil
	}

	compressed, err := r.readRange(HeaderSize+int64(info.Offset), int64(info.CompressedSize))
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", info.Name, err)
	}
	payload, err := blockcodec.Decompress(compressed, int(info.DecompressedSize))
	if err != nil {
		return nil, fmt.Errorf("record %q: %w", info.Name, err)
	}
	record.Entries, err = DecodeEntries(payload)
	if err != nil {
		r.logger.Warn("record payload truncated",
			"record", info.Name,
			"entries_kept", len(record.Entries),
			"error", err,
		)
	}
	r.cache.add(i, record)
	return record, nil
}

// Discard drops record i from the cache.
func (r *Reader) Discard(i int) {
	r.cache.remove(i)
}

// Cached is the number of decoded records currently held.
func (r *Reader) Cached() int {
	return r.cache.len()
}

// ReadFooter returns the checksum footer.
func (r *Reader) ReadFooter() (Footer, error) {
	var footer Footer
	data, err := r.readRange(r.header.FooterStart(), FooterSize)
	if err != nil {
		return footer, fmt.Errorf("reading footer: %w", err)
	}
	err = binary.Read(bytes.NewReader(data), binary.LittleEndian, &footer)
	return footer, err
}

// Verify recomputes the footer checksums and returns an error wrapping
// [ErrChecksumMismatch] naming the first region that differs.
func (r *Reader) Verify() error {
	footer, err := r.ReadFooter()
	if err != nil {
		return err
	}
	header := r.header
	regions := []struct {
		name         string
		offset, size int64
	}{
		{"header", 0, HeaderSize},
		{"payload", HeaderSize, int64(header.RecordTableStart) - HeaderSize},
		{"record table", int64(header.RecordTableStart), int64(header.RecordTableSize)},
		{"string table", int64(header.StringTableStart), int64(header.StringTableSize)},
	}
	data := make([][]byte, len(regions))
	for i, region := range regions {
		if data[i], err = r.readRange(region.offset, region.size); err != nil {
			return fmt.Errorf("reading %s: %w", region.name, err)
		}
	}

	computed := Footer{
		All:         checksum.Chain(data...),
		Strings:     checksum.Checksum(data[3]),
		Payload:     checksum.Checksum(data[1]),
		RecordTable: checksum.Checksum(data[2]),
	}
	for _, check := range []struct {
		name           string
		stored, actual uint32
	}{
		{"string table", footer.Strings, computed.Strings},
		{"payload", footer.Payload, computed.Payload},
		{"record table", footer.RecordTable, computed.RecordTable},
		{"whole file", footer.All, computed.All},
	} {
		if check.stored != check.actual {
			return fmt.Errorf("%w: %s checksum is %#08x, footer says %#08x",
				ErrChecksumMismatch, check.name, check.actual, check.stored)
		}
	}
	return nil
}
