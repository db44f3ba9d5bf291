// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package clone deep-copies a part and the relationship subgraph it
// owns, sharing whatever the copy policy says must stay shared.
//
// [Cloner.Clone] walks the outgoing relationships of a source part
// recursively. Each source is shallow-copied at most once per
// operation: the copy is recorded in the operation's [alloc.Allocator]
// before its relationships are visited, so cycles (a layout pointing at
// its master, the master pointing back at its layouts) terminate and
// diamonds (a slide and its notes slide embedding the same image)
// converge on one copy.
//
// For every relationship of a source, in order, the cloner decides
// what the copy's relationship points at:
//
//  1. closed for the owner's content type: not copied at all
//  2. external: the same external reference
//  3. dangling (no target part): dropped, with a warning
//  4. target already copied in this operation: that copy
//  5. target content type not eligible under the restricted table:
//     the original target, shared
//  6. target already copied earlier in the session
//     ([alloc.IdentityCache]): that copy
//  7. static relationship type, or opt-in type without the opt-in:
//     the original target, shared
//  8. otherwise: a recursive copy of the target, remembered in the
//     session cache immediately when its content type is
//     identity-significant
//
// The operation memo (rule 4) is checked before the restricted and
// static rules, so a back-reference to a part copied in this operation,
// such as a notes slide pointing at its slide, reaches the copy.
//
// The copy's relationship keeps the id, type and external flag of the
// original, so references from inside the payload stay valid.
//
// Format-specific bookkeeping (clearing a copied master's layout list,
// registering copied layouts and masters, renaming copied themes) is
// delegated to [Hooks].
package clone
