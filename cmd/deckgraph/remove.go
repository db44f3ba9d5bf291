// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/deck"
)

type removeParams struct {
	paths
	slideSelection
	Sweep bool `flag:"sweep" desc:"also drop slide links of other slides that no longer lead to a slide"`
}

func (a *app) removeCommand() *cli.Command {
	var params removeParams

	return &cli.Command{
		Name:    "remove",
		Summary: "Remove a slide",
		Description: `Remove a slide from the presentation.

Every relationship that targets the slide is deleted. Parts used only
by the removed slide are left out of the written package.`,
		Usage: "deckgraph remove --in FILE --out FILE (--slide N | --id N) [--sweep]",
		Examples: []cli.Example{
			{
				Description: "Remove the last slide",
				Command:     "deckgraph remove --in deck.pptx --out out.pptx --slide -1",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remove", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			ref, err := params.ref()
			if err != nil {
				return err
			}
			if err := a.setup("remove"); err != nil {
				return err
			}

			presentation, err := deck.Open(params.In, a.deckOptions())
			if err != nil {
				return err
			}
			removed, err := presentation.RemoveSlide(ref, deck.RemoveOptions{Sweep: params.Sweep})
			if err != nil {
				return err
			}
			if removed == nil {
				return fmt.Errorf("%s has no slide at %s", params.In, ref)
			}
			if err := presentation.SaveFile(params.Out, deck.SaveOptions{}); err != nil {
				return err
			}
			a.printf("removed %s (slide %d), %d slides left\n", removed.Part().Name(), removed.ID(), presentation.Len())
			return nil
		},
	}
}
