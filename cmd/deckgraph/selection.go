// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"

	"github.com/deckgraph/deckgraph/lib/deck"
)

// slideSelection selects one slide by position or id. Positions on the
// command line start at 1.
type slideSelection struct {
	Slide int    `flag:"slide" desc:"slide position, starting at 1 (negative counts from the end)"`
	ID    uint32 `flag:"id" desc:"slide id"`
}

func (s slideSelection) ref() (deck.SlideRef, error) {
	switch {
	case s.Slide != 0 && s.ID != 0:
		return deck.SlideRef{}, errors.New("--slide and --id are mutually exclusive")
	case s.ID != 0:
		return deck.ByID(s.ID), nil
	case s.Slide > 0:
		return deck.ByIndex(s.Slide - 1), nil
	case s.Slide < 0:
		return deck.ByIndex(s.Slide), nil
	default:
		return deck.SlideRef{}, errors.New("one of --slide or --id is required")
	}
}

// paths are the input and output files of a rewriting command.
type paths struct {
	In  string `flag:"in,i" desc:"presentation to read" required:"true"`
	Out string `flag:"out,o" desc:"presentation to write" required:"true"`
}

func checkCount(count int) error {
	if count < 1 {
		return fmt.Errorf("--count must be at least 1, got %d", count)
	}
	return nil
}
