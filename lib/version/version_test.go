// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"os"
	"strings"
	"testing"

	"github.com/deckgraph/deckgraph/lib/binhash"
)

func TestInfo(t *testing.T) {
	t.Parallel()

	info := Info()
	if !strings.HasPrefix(info, Version+" (") {
		t.Errorf("Info() = %q, want it to start with the version", info)
	}
	if !strings.Contains(Full(), "Go: ") {
		t.Errorf("Full() = %q, want the Go version", Full())
	}
	if Short() != Version || Commit() != GitCommit {
		t.Error("Short/Commit disagree with the injected variables")
	}
}

func TestSelfDigest(t *testing.T) {
	t.Parallel()

	digest, path, err := SelfDigest()
	if err != nil {
		t.Fatalf("SelfDigest: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading test binary: %v", err)
	}
	if want := binhash.Sum(data); digest != want {
		t.Errorf("SelfDigest() = %s, want %s", digest.Short(), want.Short())
	}
}
