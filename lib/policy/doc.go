// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy holds the classification tables that decide, per
// relationship, whether a graph copy duplicates the target or shares
// it.
//
// The tables are configuration, not code. [Tables] is the authored
// form, loaded from the embedded JSONC default ([Default]) or from the
// policy section of the deckgraph config file, using short aliases such
// as "slide-master" for relationship and content types. [Tables.Compile]
// resolves the aliases and returns a [Policy], the lookup form consumed
// by the cloner and the template materializer:
//
//   - static relationship types: targets always shared
//   - opt-in relationship types: shared unless the caller opts in to
//     duplicating that tier (the slide master)
//   - restricted: relationship type to the target content types for
//     which duplication is attempted; other targets are shared
//   - closed: owner content type to relationship types that are not
//     traversed beneath such an owner
//   - identity-significant content types: clones remembered across
//     operations for the whole session
//   - back-references: relationship types whose materialized targets
//     get a reverse relationship to their owner
package policy
