// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bytecodec

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"time"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	writer := NewWriter(&buffer)
	writer.Uint8(7)
	writer.Bool(true)
	writer.Int16(-2)
	writer.Int32(0x01020304)
	writer.Int64(-1)
	writer.String("mesh.msh")
	if err := writer.Err(); err != nil {
		t.Fatalf("write: %v", err)
	}
	if writer.Written() != int64(buffer.Len()) {
		t.Errorf("Written = %d, buffer holds %d", writer.Written(), buffer.Len())
	}

	// Little-endian layout of the int32.
	if got := buffer.Bytes()[4:8]; !bytes.Equal(got, []byte{4, 3, 2, 1}) {
		t.Errorf("int32 bytes = %v", got)
	}

	reader := NewReader(bytes.NewReader(buffer.Bytes()))
	if v := reader.Uint8(); v != 7 {
		t.Errorf("Uint8 = %d", v)
	}
	if !reader.Bool() {
		t.Errorf("Bool = false")
	}
	if v := reader.Int16(); v != -2 {
		t.Errorf("Int16 = %d", v)
	}
	if v := reader.Int32(); v != 0x01020304 {
		t.Errorf("Int32 = %#x", v)
	}
	if v := reader.Int64(); v != -1 {
		t.Errorf("Int64 = %d", v)
	}
	if v := reader.String(); v != "mesh.msh" {
		t.Errorf("String = %q", v)
	}
	if err := reader.Err(); err != nil {
		t.Fatalf("read: %v", err)
	}
}

func TestReaderErrorIsSticky(t *testing.T) {
	t.Parallel()

	reader := NewReader(bytes.NewReader([]byte{1, 2}))
	if v := reader.Int32(); v != 0 {
		t.Errorf("short Int32 = %d, want 0", v)
	}
	if !errors.Is(reader.Err(), io.ErrUnexpectedEOF) {
		t.Fatalf("Err = %v, want ErrUnexpectedEOF", reader.Err())
	}
	if v := reader.Uint8(); v != 0 {
		t.Errorf("read after error returned %d", v)
	}
}

func TestReaderRejectsHugeString(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	writer := NewWriter(&buffer)
	writer.Int32(-5)
	reader := NewReader(&buffer)
	_ = reader.String()
	if reader.Err() == nil {
		t.Fatal("negative length accepted")
	}
}

func TestIndexOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		haystack string
		needle   string
		want     int
	}{
		{"empty needle", "abc", "", 0},
		{"needle longer", "ab", "abc", -1},
		{"at start", "MDL\x07rest", "MDL\x07", 0},
		{"at end", "xxxxExportDataMDL", "ExportDataMDL", 4},
		{"middle", "here is a simple example", "example", 17},
		{"absent", "here is a simple example", "samples", -1},
		{"repeated prefix", "aaaaaaab", "aaab", 4},
		{"overlapping suffix", "abcabcabd", "abcabd", 3},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := IndexOf([]byte(test.haystack), []byte(test.needle))
			if got != test.want {
				t.Errorf("IndexOf(%q, %q) = %d, want %d", test.haystack, test.needle, got, test.want)
			}
		})
	}
}

func TestIndexOfAgreesWithBytesIndex(t *testing.T) {
	t.Parallel()

	random := rand.New(rand.NewPCG(3, 4))
	for round := 0; round < 500; round++ {
		haystack := make([]byte, random.IntN(200))
		for i := range haystack {
			haystack[i] = byte('a' + random.IntN(3))
		}
		needle := make([]byte, 1+random.IntN(5))
		for i := range needle {
			needle[i] = byte('a' + random.IntN(3))
		}
		if got, want := IndexOf(haystack, needle), bytes.Index(haystack, needle); got != want {
			t.Fatalf("IndexOf(%q, %q) = %d, want %d", haystack, needle, got, want)
		}
	}
}

func TestFileTime(t *testing.T) {
	tests := []time.Time{
		time.Date(2024, 3, 9, 12, 30, 45, 123456700, time.UTC),
		time.Date(1601, 1, 1, 0, 0, 0, 100, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 999999900, time.UTC),
	}
	for _, want := range tests {
		if got := FromFileTime(ToFileTime(want)); !got.Equal(want) {
			t.Errorf("round trip of %v = %v", want, got)
		}
	}
	// 2000-01-01 as reported by Windows.
	if got := ToFileTime(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)); got != 125911584000000000 {
		t.Errorf("ToFileTime(2000) = %d", got)
	}
	if !FromFileTime(0).IsZero() || ToFileTime(time.Time{}) != 0 {
		t.Error("zero time does not map to zero")
	}
}
