// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package partname provides the structured path identifiers ("partnames")
// of members inside a package container, and the naming families they
// belong to.
//
// A partname is an absolute, slash-separated path such as
// /ppt/slides/slide3.xml. Its naming family is obtained by replacing the
// trailing numeric suffix of the file stem with a placeholder, giving a
// [Template] such as /ppt/slides/slide%d.xml. Two partnames are similar
// when their families match: /ppt/slides/slide3.xml and
// /ppt/slides/slide12.xml are similar, /ppt/slides/slide3.xml and
// /ppt/notesSlides/notesSlide3.xml are not. A partname without a numeric
// suffix has index 0.
//
// Relationship targets are stored relative to the source part's base URI
// (its directory). [Name.RelativeRef] and [Resolve] convert between the
// two forms.
//
// This package depends on no other deckgraph packages.
package partname
