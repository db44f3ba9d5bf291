// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package opc models a package container as a graph of parts joined by
// typed, directed relationships.
//
// A [Package] owns a registry of [Part] values, each identified by a
// [partname.Name], tagged with a content type and carrying an opaque
// payload. Every part (and the package itself) has an ordered
// [Relationships] collection keyed by relationship id. A
// [Relationship] points either at another part of the same package or
// at an external reference string. The graph is not acyclic in general:
// a slide layout points at its master and the master points back at its
// layouts, so parts are shared by pointer rather than owned by a tree.
//
// Parts stay registered until [Package.Prune] drops the ones no longer
// reachable from the package relationships. [Package.Write] only
// serializes reachable parts, so a part that is no longer referenced
// disappears from the written container even without pruning.
//
// Equality is structural: [IsSimilar] compares two parts by naming
// family (not exact name), content type, payload digest and owning
// package, optionally recursing into relationship targets. The
// predicates are total: they never panic, return false on nil
// asymmetry, and terminate on cyclic graphs.
//
// [ReadPackage] and [Package.Write] convert between a Package and the
// zip container format ([Content_Types].xml, _rels/.rels and one .rels
// member per part). A relationship whose internal target is missing
// from the container is kept as a dangling relationship (nil Target,
// raw reference in TargetRef) rather than failing the load; consumers
// decide how to treat it.
package opc
