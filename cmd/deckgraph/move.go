// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/deck"
)

type moveParams struct {
	paths
	From int `flag:"from" desc:"current position, starting at 1" required:"true"`
	To   int `flag:"to" desc:"new position, starting at 1" required:"true"`
}

func (a *app) moveCommand() *cli.Command {
	var params moveParams

	return &cli.Command{
		Name:    "move",
		Summary: "Move a slide to another position",
		Usage:   "deckgraph move --in FILE --out FILE --from N --to N",
		Examples: []cli.Example{
			{
				Description: "Make the third slide the first",
				Command:     "deckgraph move --in deck.pptx --out out.pptx --from 3 --to 1",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("move", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if params.From < 1 || params.To < 1 {
				return fmt.Errorf("positions start at 1")
			}
			if err := a.setup("move"); err != nil {
				return err
			}

			presentation, err := deck.Open(params.In, a.deckOptions())
			if err != nil {
				return err
			}
			slide, err := presentation.MoveSlide(deck.ByIndex(params.From-1), params.To-1)
			if err != nil {
				return err
			}
			if slide == nil {
				return fmt.Errorf("%s has no slide at position %d", params.In, params.From)
			}
			return presentation.SaveFile(params.Out, deck.SaveOptions{})
		},
	}
}
