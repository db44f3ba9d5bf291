// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"bytes"
	"strings"
	"testing"
)

func TestSumDeterministic(t *testing.T) {
	content := []byte("<p:sld/>")
	if Sum(content) != Sum(content) {
		t.Error("Sum should be deterministic")
	}
	if Sum(content) == Sum([]byte("<p:sld />")) {
		t.Error("different payloads should have different digests")
	}
}

func TestSumReaderMatchesSum(t *testing.T) {
	// Large enough to span several internal blocks.
	content := make([]byte, 256*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}

	streamed, err := SumReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("SumReader: %v", err)
	}
	if streamed != Sum(content) {
		t.Errorf("SumReader = %s, want %s", streamed, Sum(content))
	}
}

func TestParseRoundtrip(t *testing.T) {
	digest := Sum([]byte("theme"))
	parsed, err := Parse(digest.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != digest {
		t.Errorf("Parse(String()) = %s, want %s", parsed, digest)
	}
	if len(digest.Short()) != 12 || !strings.HasPrefix(digest.String(), digest.Short()) {
		t.Errorf("Short() = %q is not a 12-character prefix of %q", digest.Short(), digest.String())
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, input := range []string{"zz", "abcd", strings.Repeat("0", 66)} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should fail", input)
		}
	}
}

func TestTextMarshaling(t *testing.T) {
	digest := Sum([]byte("image"))
	text, err := digest.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var decoded Digest
	if err := decoded.UnmarshalText(text); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if decoded != digest {
		t.Errorf("decoded = %s, want %s", decoded, digest)
	}
	if !(Digest{}).IsZero() || digest.IsZero() {
		t.Error("IsZero mismatch")
	}
}
