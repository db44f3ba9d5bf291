// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter atomic.Uint64

// UniqueID returns a string of the form "prefix-N" where N is a
// monotonically increasing integer. Use it for file names and payload
// markers that must be distinguishable across parallel tests.
//
//	name := testutil.UniqueID("deck") // "deck-1", "deck-2", ...
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, uniqueCounter.Add(1))
}
