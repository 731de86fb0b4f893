// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
)

type sampleState struct {
	Name    string            `cbor:"name"`
	Count   int               `cbor:"count"`
	Digest  [4]byte           `cbor:"digest"`
	Labels  map[string]string `cbor:"labels,omitempty"`
	Payload []byte            `cbor:"payload,omitempty"`
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	original := sampleState{
		Name:    "records/items/sword.dbr",
		Count:   42,
		Digest:  [4]byte{1, 2, 3, 4},
		Labels:  map[string]string{"b": "2", "a": "1"},
		Payload: []byte{0, 0xff},
	}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleState
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != original.Name || decoded.Count != original.Count || decoded.Digest != original.Digest ||
		decoded.Labels["a"] != "1" || decoded.Labels["b"] != "2" || !bytes.Equal(decoded.Payload, original.Payload) {
		t.Errorf("round trip = %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	// Map iteration order is random; the encoding must not be.
	labels := make(map[string]string)
	for _, key := range []string{"z", "m", "a", "q", "c"} {
		labels[key] = key
	}
	first, err := Marshal(sampleState{Name: "x", Labels: labels})
	if err != nil {
		t.Fatal(err)
	}
	for range 20 {
		again, err := Marshal(sampleState{Name: "x", Labels: labels})
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestUnknownFieldsIgnored(t *testing.T) {
	type newer struct {
		Name  string `cbor:"name"`
		Extra string `cbor:"extra"`
	}
	data, err := Marshal(newer{Name: "a", Extra: "b"})
	if err != nil {
		t.Fatal(err)
	}
	var decoded sampleState
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Name != "a" {
		t.Errorf("Name = %q", decoded.Name)
	}
}

func TestStreamRoundTrip(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for i := range 3 {
		if err := encoder.Encode(sampleState{Count: i}); err != nil {
			t.Fatal(err)
		}
	}
	decoder := NewDecoder(&buffer)
	for i := range 3 {
		var got sampleState
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if got.Count != i {
			t.Errorf("message %d has count %d", i, got.Count)
		}
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var state sampleState
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &state); err == nil {
		t.Error("Unmarshal accepted invalid CBOR")
	}
}
