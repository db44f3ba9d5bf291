// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides deckgraph's CBOR encoding configuration.
//
// Captured slide models are persisted as CBOR documents (see
// lib/template). Every package that writes CBOR goes through this
// package so that encoding is configured in one place. The encoder uses
// Core Deterministic Encoding (RFC 8949 §4.2): sorted map keys, smallest
// integer encoding, no indefinite-length items. The same model always
// produces identical bytes, so encoded models can be compared and
// content-addressed.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types implementing encoding.TextMarshaler, such as binhash.Digest,
// are encoded as CBOR text strings.
package codec
