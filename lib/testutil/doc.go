// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for deckgraph packages.
//
// [NewDeck] builds a small but complete presentation package in memory:
// one slide master with two layouts and a theme, a notes master with its
// own theme, three slides, one notes slide and one image shared by two
// slides. The first slide carries a bound slide-jump action targeting
// the second slide, and the second slide carries an unbound one. Tests
// that need the container form write the package with
// [Deck.SaveFile].
//
// [UniqueID] generates monotonically increasing identifiers for test
// disambiguation.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
