// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package template captures the structure of slides as an offline,
// package-independent [Model] and stamps new slides from it into any
// destination package.
//
// [Capture] walks each slide's relationship subgraph under the same
// copy policy the cloner uses and records every visited part as an
// immutable [Node]: naming family, content type, payload and, for slide
// roots, the slide id. A part reached from several slides becomes one
// node referenced from each of them. Relationships become [Edge]
// values pointing at nested nodes or external references. A
// relationship from inside a slide's subgraph back to the slide itself
// (a notes slide pointing at its slide) is recorded as an owner
// placeholder, because the slide it must point at only exists once the
// subgraph is materialized. Relationships from a slide root to other
// slides are not captured; cross-slide navigation is rebuilt from link
// tables.
//
// [Materialize] turns a node back into parts. Each node is produced at
// most once per [alloc.Allocator]. Before materializing a shared
// resource (a static or opt-in relationship target, or an
// identity-significant part such as a layout) it looks for a part
// already in the destination with the same naming family and content
// type, and reuses it whatever its payload. This is how stamping a
// slide into a template deck reuses the deck's own layouts and masters,
// and how a second materialization reuses the notes master the first
// one placed.
// Relationship types with a back-reference in the policy get the
// reverse relationship from the materialized child to its owner.
//
// [Encode] and [Decode] persist a model as CBOR (lib/codec) with the
// payloads stored once per blake3 digest, optionally compressed with
// lz4 or zstd.
package template
