// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package alloc provides the two caches a graph copy threads through
// its recursion.
//
// An [Allocator] lives for exactly one operation (one slide
// duplication, one template materialization). It hands out fresh
// partnames per naming family, seeded from the destination package so
// a generated name never collides with an existing member, and it
// memoizes every source already produced during the operation. The
// memo is what makes the recursive copy terminate on cyclic graphs and
// converge on diamonds: a part reached twice is copied once.
//
// An [IdentityCache] lives for a whole editing session over one
// presentation. It only remembers clones of identity-significant
// content types (slide masters and layouts), so that two slides
// duplicated in separate operations that shared a master keep sharing
// the same copy of it.
//
// The two lifetimes are kept as separate values passed explicitly;
// neither is safe for concurrent use.
package alloc
