// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"

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
}

// WithCodec sets the code page for entry names. The default is
// [textenc.Default].
func WithCodec(codec textenc.Codec) Option {
	return func(o *options) { o.codec = codec }
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
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

// Reader gives access to the entries of an archive. The header, part
// table, name pool and TOC are read by [NewReader]; file data is read
// on demand.
type Reader struct {
	source  io.ReaderAt
	size    int64
	header  Header
	parts   []Part
	names   *stringtable.Pool
	entries []Entry
	logger  *slog.Logger
}

// NewReader parses the archive tables from source, which holds size
// bytes. Any structural problem returns an error wrapping
// [ErrMalformed].
func NewReader(source io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	resolved := buildOptions(opts)
	reader := &Reader{source: source, size: size, logger: resolved.logger}

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
	reader.parts = make([]Part, header.PartCount)
	partTable := io.NewSectionReader(source, int64(header.PartTableStart), int64(header.PartTableSize))
	if err := binary.Read(partTable, binary.LittleEndian, reader.parts); err != nil {
		return nil, fmt.Errorf("%w: reading part table: %v", ErrMalformed, err)
	}

	pool := make([]byte, header.NamePoolSize)
	if err := readAt(source, pool, header.NamePoolStart()); err != nil {
		return nil, fmt.Errorf("%w: reading name pool: %v", ErrMalformed, err)
	}
	reader.names = stringtable.LoadPool(pool, resolved.codec)

	records := make([]tocRecord, header.EntryCount)
	toc := io.NewSectionReader(source, header.TOCStart(), int64(header.EntryCount)*tocRecordSize)
	if err := binary.Read(toc, binary.LittleEndian, records); err != nil {
		return nil, fmt.Errorf("%w: reading TOC: %v", ErrMalformed, err)
	}

	reader.entries = make([]Entry, len(records))
	for i, record := range records {
		name, ok := reader.names.At(record.NameOffset, record.NameLength)
		if !ok {
			reader.logger.Warn("archive entry name outside name pool",
				"entry", i,
				"name_offset", record.NameOffset,
				"name_length", record.NameLength,
			)
		}
		reader.entries[i] = Entry{
			Name:             name,
			Type:             record.Type,
			Offset:           record.Offset,
			CompressedSize:   record.CompressedSize,
			DecompressedSize: record.DecompressedSize,
			Checksum:         record.Checksum,
			ModTime:          bytecodec.FromFileTime(record.FileTime),
			PartCount:        record.PartCount,
			FirstPart:        record.FirstPart,
		}
	}
	return reader, nil
}

func (r *Reader) validateHeader() error {
	header := r.header
	if header.Magic != Magic {
		return fmt.Errorf("%w: bad magic %q", ErrMalformed, header.Magic[:])
	}
	if header.Version != Version {
		r.logger.Warn("unexpected archive version", "version", header.Version)
	}
	if header.EntryCount < 0 || header.PartCount < 0 || header.PartTableSize < 0 ||
		header.NamePoolSize < 0 || header.PartTableStart < HeaderSize {
		return fmt.Errorf("%w: negative count or offset in header", ErrMalformed)
	}
	if int64(header.PartTableSize) < int64(header.PartCount)*partRecordSize {
		return fmt.Errorf("%w: part table of %d bytes cannot hold %d parts",
			ErrMalformed, header.PartTableSize, header.PartCount)
	}
	end := header.TOCStart() + int64(header.EntryCount)*tocRecordSize
	if end > r.size {
		return fmt.Errorf("%w: tables end at %d but archive is %d bytes", ErrMalformed, end, r.size)
	}
	return nil
}

// Header returns the parsed header.
func (r *Reader) Header() Header { return r.header }

// Entries returns the TOC in file order. The slice must not be modified.
func (r *Reader) Entries() []Entry { return r.entries }

// Parts returns the part table. The slice must not be modified.
func (r *Reader) Parts() []Part { return r.parts }

// List returns every entry name in TOC order, with anonymous entries
// rendered as [NullName].
func (r *Reader) List() []string {
	names := make([]string, len(r.entries))
	for i, entry := range r.entries {
		names[i] = entry.ListName()
	}
	return names
}

// Lookup returns the first entry with the given name.
func (r *Reader) Lookup(name string) (Entry, bool) {
	for _, entry := range r.entries {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}

// entryParts returns the parts of entry after checking the range.
func (r *Reader) entryParts(entry Entry) ([]Part, error) {
	first, count := int64(entry.FirstPart), int64(entry.PartCount)
	if first < 0 || count < 0 || first+count > int64(len(r.parts)) {
		return nil, fmt.Errorf("entry %q: parts [%d, %d) outside part table of %d",
			entry.Name, first, first+count, len(r.parts))
	}
	return r.parts[first : first+count], nil
}

// readRange reads length bytes at offset, failing when the range is
// outside the archive.
func (r *Reader) readRange(offset, length int32) ([]byte, error) {
	if offset < 0 || length < 0 || int64(offset)+int64(length) > r.size {
		return nil, fmt.Errorf("range [%d, +%d) outside archive of %d bytes", offset, length, r.size)
	}
	buffer := make([]byte, length)
	if err := readAt(r.source, buffer, int64(offset)); err != nil {
		return nil, err
	}
	return buffer, nil
}

// readAt fills buffer from offset. A ReaderAt may report io.EOF
// together with a complete read at the end of its input.
func readAt(source io.ReaderAt, buffer []byte, offset int64) error {
	n, err := source.ReadAt(buffer, offset)
	if n == len(buffer) {
		return nil
	}
	if err == nil || err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// Unpack writes the original bytes of entry to sink.
func (r *Reader) Unpack(entry Entry, sink io.Writer) error {
	if entry.StoredWhole() {
		data, err := r.readRange(entry.Offset, entry.CompressedSize)
		if err != nil {
			return fmt.Errorf("entry %q: %w", entry.Name, err)
		}
		_, err = sink.Write(data)
		return err
	}

	parts, err := r.entryParts(entry)
	if err != nil {
		return err
	}
	for index, part := range parts {
		stored, err := r.readRange(part.Offset, part.CompressedSize)
		if err != nil {
			return fmt.Errorf("entry %q part %d: %w", entry.Name, index, err)
		}
		var data []byte
		if part.Compressed() {
			data, err = blockcodec.Decompress(stored, int(part.DecompressedSize))
			if err != nil {
				return fmt.Errorf("entry %q part %d: %w", entry.Name, index, err)
			}
		} else {
			if part.DecompressedSize < 0 {
				return fmt.Errorf("entry %q part %d: negative size %d", entry.Name, index, part.DecompressedSize)
			}
			data = stored[:part.DecompressedSize]
		}
		if _, err := sink.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// ReadEntry returns the original bytes of entry.
func (r *Reader) ReadEntry(entry Entry) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(int(max(entry.DecompressedSize, 0)))
	if err := r.Unpack(entry, &buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Verify unpacks entry and compares its Adler32 and size with the TOC.
func (r *Reader) Verify(entry Entry) error {
	running := checksum.New()
	counter := &countingWriter{}
	if err := r.Unpack(entry, io.MultiWriter(running, counter)); err != nil {
		return err
	}
	if counter.n != int64(entry.DecompressedSize) {
		return fmt.Errorf("entry %q: unpacked %d bytes, TOC says %d", entry.Name, counter.n, entry.DecompressedSize)
	}
	if running.Sum32() != entry.Checksum {
		return fmt.Errorf("entry %q: checksum %#08x, TOC says %#08x", entry.Name, running.Sum32(), entry.Checksum)
	}
	return nil
}

type countingWriter struct{ n int64 }

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
