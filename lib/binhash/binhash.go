// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// Size is the length of a digest in bytes.
const Size = 32

// Digest is a BLAKE3-256 digest of a payload.
type Digest [Size]byte

// Sum returns the digest of data.
func Sum(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// SumReader streams r through the hash function and returns the
// digest, keeping memory usage constant regardless of input size.
func SumReader(r io.Reader) (Digest, error) {
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return Digest{}, fmt.Errorf("hashing stream: %w", err)
	}
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// String returns the hex encoding of d.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters of d, for log output.
func (d Digest) Short() string {
	return d.String()[:12]
}

// IsZero reports whether d is the zero value.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Parse parses a 64-character hex string into a digest.
func Parse(hexString string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(digest[:], decoded)
	return digest, nil
}

// MarshalText implements encoding.TextMarshaler so digests serialize
// as hex strings in CBOR and JSON.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
