// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deckgraph/deckgraph/lib/binhash"
)

type sampleRecord struct {
	Template string         `cbor:"template"`
	Slide    uint32         `cbor:"slide_id,omitempty"`
	Digest   binhash.Digest `cbor:"digest"`
	Data     []byte         `cbor:"data"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	t.Parallel()

	original := sampleRecord{
		Template: "/ppt/slides/slide%d.xml",
		Slide:    256,
		Digest:   binhash.Sum([]byte("<p:sld/>")),
		Data:     []byte("<p:sld/>"),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Template != original.Template || decoded.Slide != original.Slide {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
	if decoded.Digest != original.Digest {
		t.Errorf("Digest = %s, want %s", decoded.Digest, original.Digest)
	}
	if !bytes.Equal(decoded.Data, original.Data) {
		t.Errorf("Data = %q, want %q", decoded.Data, original.Data)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	t.Parallel()

	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatal("Marshal is not deterministic across calls")
		}
	}
}

func TestDigestEncodesAsText(t *testing.T) {
	t.Parallel()

	digest := binhash.Sum([]byte("payload"))
	data, err := Marshal(sampleRecord{Digest: digest})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"`+digest.String()+`"`) {
		t.Errorf("notation %q does not contain the hex digest", notation)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	t.Parallel()

	data, err := Marshal(sampleRecord{Template: "x"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if strings.Contains(notation, "slide_id") {
		t.Errorf("notation %q contains omitted field slide_id", notation)
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	t.Parallel()

	var decoded sampleRecord
	if err := Unmarshal([]byte{0xff, 0xfe, 0xfd}, &decoded); err == nil {
		t.Error("expected error for invalid CBOR, got nil")
	}
}

func BenchmarkMarshal(b *testing.B) {
	record := sampleRecord{
		Template: "/ppt/slides/slide%d.xml",
		Digest:   binhash.Sum([]byte("payload")),
		Data:     bytes.Repeat([]byte("<a:t>text</a:t>"), 64),
	}
	b.ReportAllocs()
	for b.Loop() {
		Marshal(record)
	}
}
