// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSumMatchesHashReader(t *testing.T) {
	content := make([]byte, 256*1024+7)
	for i := range content {
		content[i] = byte(i % 251)
	}
	streamed, err := HashReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("HashReader: %v", err)
	}
	if streamed != Sum(content) {
		t.Errorf("HashReader = %x, Sum = %x", streamed, Sum(content))
	}
}

func TestSumKnownValue(t *testing.T) {
	// BLAKE3 of the empty input.
	const empty = "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"
	if got := FormatDigest(Sum(nil)); got != empty {
		t.Errorf("Sum(nil) = %s, want %s", got, empty)
	}
}

func TestSumDifferentContent(t *testing.T) {
	if Sum([]byte("damage,1,")) == Sum([]byte("damage,2,")) {
		t.Error("different content produced the same digest")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestHashReaderError(t *testing.T) {
	if _, err := HashReader(failingReader{}); err == nil || !strings.Contains(err.Error(), "disk on fire") {
		t.Errorf("HashReader error = %v", err)
	}
}

func TestParseDigestRoundTrip(t *testing.T) {
	original := Sum([]byte("records/items/sword.dbr"))
	parsed, err := ParseDigest(FormatDigest(original))
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != original {
		t.Errorf("round trip = %x, want %x", parsed, original)
	}
}

func TestParseDigestInvalid(t *testing.T) {
	for _, input := range []string{"", "zz", strings.Repeat("ab", 31), strings.Repeat("ab", 33)} {
		if _, err := ParseDigest(input); err == nil {
			t.Errorf("ParseDigest(%q) succeeded", input)
		}
	}
}
