// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package pml edits the handful of presentation markup fragments that
// graph operations must keep consistent: the slide-id and master-id
// lists of the presentation part, the layout-id list of a slide master,
// the display name of a theme, and the slide-jump hyperlink actions of a
// slide.
//
// Edits are byte-offset splices. The payload is scanned once with an
// encoding/xml decoder in raw mode to locate element spans, and only
// the bytes of the edited element are regenerated. Everything else
// (namespace declarations, attribute order, extension lists,
// whitespace) is preserved exactly, which a decode/encode round trip
// through Go structs would not do.
//
// Functions take a payload and return a new payload; inputs are never
// modified in place. A list that must exist but does not, and has no
// known sibling to insert after, yields [ErrElementNotFound].
package pml
