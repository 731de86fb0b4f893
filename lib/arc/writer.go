// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/bureau-foundation/arzedit/lib/blockcodec"
	"github.com/bureau-foundation/arzedit/lib/bytecodec"
	"github.com/bureau-foundation/arzedit/lib/checksum"
	"github.com/bureau-foundation/arzedit/lib/stringtable"
)

// Writer builds an archive on a seekable sink. Entries are streamed to
// the sink as they are added; the tables are held in memory until
// [Writer.Close].
type Writer struct {
	sink     io.WriteSeeker
	position int64
	parts    []Part
	names    *stringtable.Pool
	toc      []tocRecord
	block    []byte
	logger   *slog.Logger
	closed   bool
}

// NewWriter starts an archive at offset 0 of sink by writing the zeroed
// header reserve.
func NewWriter(sink io.WriteSeeker, opts ...Option) (*Writer, error) {
	resolved := buildOptions(opts)
	if _, err := sink.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking to archive start: %w", err)
	}
	writer := &Writer{
		sink:   sink,
		names:  stringtable.NewPool(resolved.codec),
		logger: resolved.logger,
	}
	if err := writer.write(make([]byte, headerReserve)); err != nil {
		return nil, fmt.Errorf("reserving header: %w", err)
	}
	return writer, nil
}

func (w *Writer) write(data []byte) error {
	if w.position+int64(len(data)) > math.MaxInt32 {
		return fmt.Errorf("archive would exceed %d bytes", math.MaxInt32)
	}
	n, err := w.sink.Write(data)
	w.position += int64(n)
	return err
}

// EntryCount returns the number of entries added so far.
func (w *Writer) EntryCount() int { return len(w.toc) }

// WriteFromStream reads source to EOF and adds it as one entry. Each
// block of up to [BlockSize] bytes is stored as LZ4 when that is
// strictly smaller and raw otherwise. When it fails, the entry's name
// and parts are not recorded, so the writer can go on with other
// entries; blocks already streamed stay behind as unreferenced bytes.
func (w *Writer) WriteFromStream(name string, modTime time.Time, source io.Reader) error {
	if w.closed {
		return errors.New("archive writer is closed")
	}
	if w.block == nil {
		w.block = make([]byte, BlockSize)
	}

	record := tocRecord{
		Type:      TypeBlocks,
		Offset:    int32(w.position),
		FirstPart: int32(len(w.parts)),
		FileTime:  bytecodec.ToFileTime(modTime),
	}

	var written []Part
	running := checksum.New()
	var compressedTotal, decompressedTotal int64
	for {
		read, readErr := io.ReadFull(source, w.block)
		if read > 0 {
			data := w.block[:read]
			running.Compute(data, 0, read)

			stored, _ := blockcodec.CompressOrStore(data)
			part := Part{
				Offset:           int32(w.position),
				CompressedSize:   int32(len(stored)),
				DecompressedSize: int32(read),
			}
			if err := w.write(stored); err != nil {
				return fmt.Errorf("writing %q: %w", name, err)
			}
			written = append(written, part)
			compressedTotal += int64(part.CompressedSize)
			decompressedTotal += int64(read)
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading %q: %w", name, readErr)
		}
	}

	w.parts = append(w.parts, written...)
	record.PartCount = int32(len(written))
	record.CompressedSize = int32(compressedTotal)
	record.DecompressedSize = int32(decompressedTotal)
	record.Checksum = running.Sum32()
	record.NameOffset, record.NameLength = w.names.Append(name)
	w.toc = append(w.toc, record)
	return nil
}

// WriteBytes adds data as one entry.
func (w *Writer) WriteBytes(name string, modTime time.Time, data []byte) error {
	return w.WriteFromStream(name, modTime, bytes.NewReader(data))
}

// CopyEntry copies entry from source without recompressing. Stored
// parts are copied byte for byte and the TOC metadata is carried over.
func (w *Writer) CopyEntry(source *Reader, entry Entry) error {
	if w.closed {
		return errors.New("archive writer is closed")
	}

	record := tocRecord{
		Type:             entry.Type,
		Offset:           int32(w.position),
		CompressedSize:   entry.CompressedSize,
		DecompressedSize: entry.DecompressedSize,
		Checksum:         entry.Checksum,
		FileTime:         bytecodec.ToFileTime(entry.ModTime),
		FirstPart:        int32(len(w.parts)),
	}

	if entry.StoredWhole() {
		data, err := source.readRange(entry.Offset, entry.CompressedSize)
		if err != nil {
			return fmt.Errorf("copying %q: %w", entry.Name, err)
		}
		if err := w.write(data); err != nil {
			return fmt.Errorf("copying %q: %w", entry.Name, err)
		}
	}

	parts, err := source.entryParts(entry)
	if err != nil {
		return err
	}
	copied := make([]Part, 0, len(parts))
	for index, part := range parts {
		data, err := source.readRange(part.Offset, part.CompressedSize)
		if err != nil {
			return fmt.Errorf("copying %q part %d: %w", entry.Name, index, err)
		}
		moved := part
		moved.Offset = int32(w.position)
		if err := w.write(data); err != nil {
			return fmt.Errorf("copying %q: %w", entry.Name, err)
		}
		copied = append(copied, moved)
	}

	w.parts = append(w.parts, copied...)
	record.PartCount = int32(len(copied))
	record.NameOffset, record.NameLength = w.names.Append(entry.Name)
	w.toc = append(w.toc, record)
	return nil
}

// Close appends the part table, name pool and TOC, then rewrites the
// header at offset 0. The sink is left positioned at its end. Close
// does not close the sink.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	header := Header{
		Magic:          Magic,
		Version:        Version,
		EntryCount:     int32(len(w.toc)),
		PartCount:      int32(len(w.parts)),
		PartTableSize:  int32(len(w.parts) * partRecordSize),
		NamePoolSize:   int32(w.names.Len()),
		PartTableStart: int32(w.position),
	}

	var tables bytes.Buffer
	binary.Write(&tables, binary.LittleEndian, w.parts)
	tables.Write(w.names.Bytes())
	binary.Write(&tables, binary.LittleEndian, w.toc)
	if err := w.write(tables.Bytes()); err != nil {
		return fmt.Errorf("writing archive tables: %w", err)
	}

	if _, err := w.sink.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to header: %w", err)
	}
	if err := binary.Write(w.sink, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := w.sink.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("seeking to end: %w", err)
	}
	w.logger.Debug("archive finished",
		"entries", header.EntryCount,
		"parts", header.PartCount,
		"bytes", w.position,
	)
	return nil
}
