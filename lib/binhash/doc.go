// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash computes content digests of part payloads.
//
// Digests are BLAKE3-256. They are used wherever two payloads must be
// compared or stored once: similarity checks between parts
// ([github.com/deckgraph/deckgraph/lib/opc]), the content-addressed blob
// table of encoded templates, and CLI output. The canonical text form
// is lowercase hex, produced by [Digest.String] and accepted by [Parse].
//
// This package has no deckgraph-internal dependencies.
package binhash
