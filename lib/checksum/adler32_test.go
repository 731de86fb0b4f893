// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package checksum

import (
	"bytes"
	"hash/adler32"
	"math/rand/v2"
	"testing"
)

func TestChecksumMatchesStandardLibrary(t *testing.T) {
	t.Parallel()

	random := rand.New(rand.NewPCG(1, 2))
	sizes := []int{0, 1, 17, blockLimit - 1, blockLimit, blockLimit + 1, 65536, 300000}
	for _, size := range sizes {
		data := make([]byte, size)
		for i := range data {
			data[i] = byte(random.IntN(256))
		}
		if got, want := Checksum(data), adler32.Checksum(data); got != want {
			t.Errorf("size %d: Checksum = %#08x, want %#08x", size, got, want)
		}
	}
}

func TestComputeIsComposable(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{0xff}, 10000)
	whole := Checksum(data)

	for _, split := range []int{0, 1, blockLimit, 5000, 9999, 10000} {
		running := New()
		running.Compute(data, 0, split)
		running.Compute(data, split, len(data)-split)
		if running.Sum32() != whole {
			t.Errorf("split at %d: got %#08x, want %#08x", split, running.Sum32(), whole)
		}

		resumed := Resume(Checksum(data[:split]))
		resumed.Compute(data, split, len(data)-split)
		if resumed.Sum32() != whole {
			t.Errorf("resume at %d: got %#08x, want %#08x", split, resumed.Sum32(), whole)
		}
	}
}

func TestEmptyInputIsInitial(t *testing.T) {
	t.Parallel()

	if got := Checksum(nil); got != Initial {
		t.Errorf("Checksum(nil) = %d, want %d", got, Initial)
	}
}

func TestChainEqualsConcatenation(t *testing.T) {
	t.Parallel()

	header := []byte("header")
	payload := bytes.Repeat([]byte("payload"), 1000)
	table := []byte{1, 2, 3, 4}

	joined := append(append(append([]byte{}, header...), payload...), table...)
	if got, want := Chain(header, payload, table), Checksum(joined); got != want {
		t.Errorf("Chain = %#08x, want %#08x", got, want)
	}
}

func TestWriterInterface(t *testing.T) {
	t.Parallel()

	running := New()
	running.Write([]byte("Wiki"))
	running.Write([]byte("pedia"))
	// Reference value from the Adler-32 definition.
	if got := running.Sum32(); got != 0x11E60398 {
		t.Errorf("Sum32 = %#08x, want 0x11e60398", got)
	}
	if got := running.Sum(nil); !bytes.Equal(got, []byte{0x11, 0xe6, 0x03, 0x98}) {
		t.Errorf("Sum = %x", got)
	}
	running.Reset()
	if running.Sum32() != Initial {
		t.Errorf("Reset did not restore initial value")
	}
}
