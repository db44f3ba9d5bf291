// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package deck is the presentation facade over the part graph.
//
// A [Presentation] wraps an opc.Package whose main part is a
// presentation. It keeps the ordered slide collection in step with the
// slide-id list of the presentation payload and owns the two pieces of
// state that outlive a single operation: the identity cache that makes
// repeated duplications converge on the same copied masters and
// layouts, and the counter that issues master and layout ids.
//
// Operations:
//
//   - [Presentation.DuplicateSlide] deep-copies a slide with lib/clone.
//   - [Presentation.RemoveSlide] unlinks a slide from every part that
//     refers to it.
//   - [Presentation.MoveSlide] reorders the slide list.
//   - [Presentation.CaptureModel] snapshots the slides as a
//     template.Model, and [Presentation.MaterializeSlide] stamps a model
//     slide into the presentation.
//   - [Presentation.Write] resolves every slide's link table and
//     serializes the package.
//
// Slides are selected with a [SlideRef], by position or by slide id. A
// reference that does not resolve makes DuplicateSlide, RemoveSlide and
// MaterializeSlide return a nil slide and a nil error.
//
// The format-specific side of copying (theme display names, master and
// layout id lists) is applied through hooks that lib/clone and
// lib/template call back into; see hooks.go.
//
// A Presentation is not safe for concurrent use.
package deck
