// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package arc

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"
	"time"

	"github.com/bureau-foundation/arzedit/lib/bytecodec"
	"github.com/bureau-foundation/arzedit/lib/checksum"
	"github.com/bureau-foundation/arzedit/lib/fsys"
	"github.com/bureau-foundation/arzedit/lib/progress"
	"github.com/bureau-foundation/arzedit/lib/testutil"
	"github.com/bureau-foundation/arzedit/lib/textenc"
)

var stamp = time.Date(2024, 3, 9, 12, 30, 45, 123456700, time.UTC)

func randomBytes(seed uint64, size int) []byte {
	random := rand.New(rand.NewPCG(seed, seed+1))
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(random.Uint32())
	}
	return data
}

type testFile struct {
	name string
	data []byte
}

func buildArchive(t *testing.T, files []testFile) *testutil.SeekBuffer {
	t.Helper()
	var buffer testutil.SeekBuffer
	writer, err := NewWriter(&buffer)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for _, file := range files {
		if err := writer.WriteBytes(file.name, stamp, file.data); err != nil {
			t.Fatalf("WriteBytes(%s): %v", file.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buffer
}

func openArchive(t *testing.T, buffer *testutil.SeekBuffer) *Reader {
	t.Helper()
	reader, err := NewReader(buffer, buffer.Len())
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return reader
}

func TestRoundTrip(t *testing.T) {
	files := []testFile{
		{"text/en/tags.txt", bytes.Repeat([]byte("tagName=Value\n"), 2000)},
		{"empty.txt", nil},
		{"noise.bin", randomBytes(7, 5000)},
	}
	reader := openArchive(t, buildArchive(t, files))

	if got := len(reader.Entries()); got != len(files) {
		t.Fatalf("entry count = %d, want %d", got, len(files))
	}
	for i, file := range files {
		entry := reader.Entries()[i]
		if entry.Name != file.name {
			t.Errorf("entry %d name = %q, want %q", i, entry.Name, file.name)
		}
		if entry.Type != TypeBlocks {
			t.Errorf("entry %d type = %d, want %d", i, entry.Type, TypeBlocks)
		}
		if !entry.ModTime.Equal(stamp) {
			t.Errorf("entry %d time = %v, want %v", i, entry.ModTime, stamp)
		}
		if entry.Checksum != checksum.Checksum(file.data) {
			t.Errorf("entry %d checksum mismatch", i)
		}
		data, err := reader.ReadEntry(entry)
		if err != nil {
			t.Fatalf("ReadEntry(%s): %v", file.name, err)
		}
		if !bytes.Equal(data, file.data) {
			t.Errorf("entry %s content differs", file.name)
		}
		if err := reader.Verify(entry); err != nil {
			t.Errorf("Verify(%s): %v", file.name, err)
		}
	}

	compressible := reader.Entries()[0]
	if compressible.CompressedSize >= compressible.DecompressedSize {
		t.Errorf("repetitive text stored raw: %d >= %d", compressible.CompressedSize, compressible.DecompressedSize)
	}
	noise := reader.Entries()[2]
	if noise.CompressedSize != noise.DecompressedSize {
		t.Errorf("random data not stored raw: %d != %d", noise.CompressedSize, noise.DecompressedSize)
	}
	empty := reader.Entries()[1]
	if empty.PartCount != 0 || empty.DecompressedSize != 0 {
		t.Errorf("empty entry = %+v", empty)
	}
}

func TestOneMegabyteSplitsIntoFourParts(t *testing.T) {
	data := randomBytes(11, 1<<20)
	// Make two of the blocks compressible so both part kinds occur.
	copy(data[BlockSize:], bytes.Repeat([]byte{'a'}, BlockSize))
	copy(data[3*BlockSize:], bytes.Repeat([]byte("abcd"), BlockSize/4))

	reader := openArchive(t, buildArchive(t, []testFile{{"big.bin", data}}))
	entry := reader.Entries()[0]
	if entry.PartCount != 4 {
		t.Fatalf("PartCount = %d, want 4", entry.PartCount)
	}

	parts := reader.Parts()[entry.FirstPart : entry.FirstPart+entry.PartCount]
	for index, part := range parts {
		if part.DecompressedSize != BlockSize {
			t.Errorf("part %d size = %d", index, part.DecompressedSize)
		}
		// Each part decodes on its own.
		single := Entry{Name: "part", Type: TypeBlocks, FirstPart: entry.FirstPart + int32(index), PartCount: 1}
		got, err := reader.ReadEntry(single)
		if err != nil {
			t.Fatalf("part %d: %v", index, err)
		}
		if !bytes.Equal(got, data[index*BlockSize:(index+1)*BlockSize]) {
			t.Errorf("part %d content differs", index)
		}
	}
	if parts[0].Compressed() || !parts[1].Compressed() || !parts[3].Compressed() {
		t.Errorf("unexpected compression pattern: %+v", parts)
	}
}

func TestHeaderLayout(t *testing.T) {
	buffer := buildArchive(t, []testFile{{"a.txt", []byte("hello")}})
	raw := buffer.Bytes()

	if !bytes.Equal(raw[:4], []byte("ARC\x00")) {
		t.Fatalf("magic = %q", raw[:4])
	}
	if version := binary.LittleEndian.Uint32(raw[4:]); version != 3 {
		t.Errorf("version = %d", version)
	}
	// Data starts after the reserved region.
	if !bytes.Equal(raw[headerReserve:headerReserve+5], []byte("hello")) {
		t.Errorf("data not at reserve boundary")
	}
	for _, b := range raw[HeaderSize:headerReserve] {
		if b != 0 {
			t.Fatal("reserve region not zeroed")
		}
	}

	reader := openArchive(t, buffer)
	header := reader.Header()
	if header.TOCStart()+tocRecordSize != buffer.Len() {
		t.Errorf("TOC does not end the file: %d + %d != %d", header.TOCStart(), tocRecordSize, buffer.Len())
	}
	if header.NamePoolSize != int32(len("a.txt")+1) {
		t.Errorf("NamePoolSize = %d", header.NamePoolSize)
	}
}

// storedWholeArchive lays out an archive by hand with one type 1 entry
// whose bytes sit directly after the header, plus an anonymous entry.
func storedWholeArchive(t *testing.T) *testutil.SeekBuffer {
	t.Helper()
	content := []byte("stored whole content")
	pool := []byte("whole.txt\x00\x00")

	var buffer testutil.SeekBuffer
	header := Header{
		Magic:          Magic,
		Version:        Version,
		EntryCount:     2,
		PartCount:      0,
		PartTableSize:  0,
		NamePoolSize:   int32(len(pool)),
		PartTableStart: int32(HeaderSize + len(content)),
	}
	binary.Write(&buffer, binary.LittleEndian, &header)
	buffer.Write(content)
	buffer.Write(pool)
	binary.Write(&buffer, binary.LittleEndian, []tocRecord{
		{
			Type:             TypeStoredWhole,
			Offset:           HeaderSize,
			CompressedSize:   int32(len(content)),
			DecompressedSize: int32(len(content)),
			Checksum:         checksum.Checksum(content),
			FileTime:         bytecodec.ToFileTime(stamp),
			NameLength:       9,
			NameOffset:       0,
		},
		{Type: 0, NameOffset: 10, NameLength: 0},
	})
	return &buffer
}

func TestStoredWholeFastPath(t *testing.T) {
	reader := openArchive(t, storedWholeArchive(t))
	entry, ok := reader.Lookup("whole.txt")
	if !ok {
		t.Fatalf("entry missing, have %v", reader.List())
	}
	if !entry.StoredWhole() {
		t.Fatal("entry not recognised as stored whole")
	}
	data, err := reader.ReadEntry(entry)
	if err != nil {
		t.Fatalf("ReadEntry: %v", err)
	}
	if string(data) != "stored whole content" {
		t.Errorf("content = %q", data)
	}

	names := reader.List()
	if len(names) != 2 || names[1] != NullName {
		t.Errorf("List = %v", names)
	}

	// Repacking keeps the stored-whole entry readable.
	var repacked testutil.SeekBuffer
	if err := Repack(reader, &repacked); err != nil {
		t.Fatalf("Repack: %v", err)
	}
	again := openArchive(t, &repacked)
	entry, _ = again.Lookup("whole.txt")
	if err := again.Verify(entry); err != nil {
		t.Errorf("Verify after repack: %v", err)
	}
}

func TestMalformedArchives(t *testing.T) {
	valid := buildArchive(t, []testFile{{"a.txt", []byte("hello")}}).Bytes()

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{"too short", func(b []byte) []byte { return b[:10] }},
		{"bad magic", func(b []byte) []byte { b[0] = 'X'; return b }},
		{"truncated TOC", func(b []byte) []byte { return b[:len(b)-4] }},
		{"negative entry count", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[8:], 0xffffffff)
			return b
		}},
		{"part table too small", func(b []byte) []byte {
			binary.LittleEndian.PutUint32(b[16:], 4)
			return b
		}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data := test.mutate(append([]byte(nil), valid...))
			_, err := NewReader(bytes.NewReader(data), int64(len(data)))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("error = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestFailedStreamLeavesNoEntry(t *testing.T) {
	var buffer testutil.SeekBuffer
	writer, err := NewWriter(&buffer)
	if err != nil {
		t.Fatal(err)
	}
	readFailure := errors.New("disk went away")
	// Two whole blocks reach the sink before the source fails.
	broken := io.MultiReader(bytes.NewReader(randomBytes(7, 2*BlockSize)), iotest.ErrReader(readFailure))
	if err := writer.WriteFromStream("broken.bin", stamp, broken); !errors.Is(err, readFailure) {
		t.Fatalf("WriteFromStream = %v, want the read error", err)
	}
	if writer.EntryCount() != 0 {
		t.Errorf("EntryCount after failure = %d", writer.EntryCount())
	}

	good := randomBytes(8, BlockSize+10)
	if err := writer.WriteBytes("good.bin", stamp, good); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	reader := openArchive(t, &buffer)
	if got := reader.List(); len(got) != 1 || got[0] != "good.bin" {
		t.Fatalf("List = %v", got)
	}
	if parts := len(reader.Parts()); parts != 2 {
		t.Errorf("part table holds %d parts, want the 2 of good.bin", parts)
	}
	if size := reader.Header().NamePoolSize; size != int32(len("good.bin")+1) {
		t.Errorf("name pool size = %d", size)
	}
	entry := reader.Entries()[0]
	if entry.FirstPart != 0 {
		t.Errorf("FirstPart = %d, want 0", entry.FirstPart)
	}
	var unpacked bytes.Buffer
	if err := reader.Unpack(entry, &unpacked); err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if !bytes.Equal(unpacked.Bytes(), good) {
		t.Error("good.bin content changed")
	}
	if err := reader.Verify(entry); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestMergeCopiesBytes(t *testing.T) {
	first := openArchive(t, buildArchive(t, []testFile{
		{"a.txt", bytes.Repeat([]byte("a"), 1000)},
		{"b.bin", randomBytes(3, 300000)},
	}))
	second := openArchive(t, buildArchive(t, []testFile{{"c.txt", []byte("c")}}))

	var merged testutil.SeekBuffer
	if err := Merge(&merged, []*Reader{first, second}); err != nil {
		t.Fatalf("Merge: %v", err)
	}
	reader := openArchive(t, &merged)
	if got := reader.List(); len(got) != 3 || got[0] != "a.txt" || got[2] != "c.txt" {
		t.Fatalf("List = %v", got)
	}
	sources := append(append([]Entry(nil), first.Entries()...), second.Entries()...)
	for i, entry := range reader.Entries() {
		source := sources[i]
		if entry.CompressedSize != source.CompressedSize || entry.Checksum != source.Checksum {
			t.Errorf("entry %s metadata changed", entry.Name)
		}
		if err := reader.Verify(entry); err != nil {
			t.Errorf("Verify(%s): %v", entry.Name, err)
		}
	}
}

func TestUnpackAllIsolatesFailures(t *testing.T) {
	files := []testFile{
		{"records/ok.txt", []byte("fine")},
		{"../escape.txt", []byte("nope")},
		{"deep/nested/dir/zero.bin", nil},
	}
	reader := openArchive(t, buildArchive(t, files))

	// The hand-built archive carries an anonymous entry.
	anonymous := openArchive(t, storedWholeArchive(t))

	dir := t.TempDir()
	var recorder progress.Recorder
	summary, err := reader.UnpackAll(context.Background(), dir, fsys.OS(), &recorder)
	if err != nil {
		t.Fatalf("UnpackAll: %v", err)
	}
	if summary.Succeeded != 2 || len(summary.Failed) != 1 {
		t.Errorf("summary = %s", summary)
	}
	if summary.Failed[0].Item != "../escape.txt" {
		t.Errorf("failed item = %q", summary.Failed[0].Item)
	}

	tree := testutil.ReadTree(t, dir)
	if tree["records/ok.txt"] != "fine" {
		t.Errorf("tree = %v", tree)
	}
	if content, ok := tree["deep/nested/dir/zero.bin"]; !ok || content != "" {
		t.Errorf("zero-length file missing or non-empty")
	}
	info, err := os.Stat(filepath.Join(dir, "records", "ok.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !info.ModTime().Equal(stamp) {
		t.Errorf("ModTime = %v, want %v", info.ModTime(), stamp)
	}
	if last, _ := recorder.Last("report"); last.Percent != 90 {
		t.Errorf("last progress = %d, want 90", last.Percent)
	}

	summary, err = anonymous.UnpackAll(context.Background(), t.TempDir(), fsys.OS(), progress.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if summary.Succeeded != 1 || len(summary.Skipped) != 1 {
		t.Errorf("anonymous summary = %s", summary)
	}
}

func TestUnpackAllStopsOnCancel(t *testing.T) {
	reader := openArchive(t, buildArchive(t, []testFile{{"a", []byte("a")}, {"b", []byte("b")}}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := reader.UnpackAll(ctx, t.TempDir(), fsys.OS(), progress.Nop())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want Canceled", err)
	}
	if summary.Total() != 0 {
		t.Errorf("processed %d items after cancel", summary.Total())
	}
}

func TestGBKNames(t *testing.T) {
	var buffer testutil.SeekBuffer
	writer, err := NewWriter(&buffer, WithCodec(textenc.GBK))
	if err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteBytes("文本/说明.txt", stamp, []byte("x")); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	reader, err := NewReader(&buffer, buffer.Len(), WithCodec(textenc.GBK))
	if err != nil {
		t.Fatal(err)
	}
	if name := reader.Entries()[0].Name; name != "文本/说明.txt" {
		t.Errorf("name = %q", name)
	}
}

