// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/deck"
)

type duplicateParams struct {
	paths
	slideSelection
	Master bool `flag:"master" desc:"copy the slide master and its layouts instead of sharing them"`
	Count  int  `flag:"count,n" desc:"number of copies" default:"1"`
	To     int  `flag:"to" desc:"position of the first copy, starting at 1 (default: append)"`
}

func (a *app) duplicateCommand() *cli.Command {
	var params duplicateParams

	return &cli.Command{
		Name:    "duplicate",
		Summary: "Duplicate a slide",
		Description: `Duplicate a slide together with the parts it depends on.

Parts the policy marks as shared (masters, layouts, media) are reused;
notes and other per-slide parts are copied. With --master the master
and the layouts the slide uses are copied as well, and later copies in
the same run share that new master.`,
		Usage: "deckgraph duplicate --in FILE --out FILE (--slide N | --id N) [flags]",
		Examples: []cli.Example{
			{
				Description: "Append a copy of slide 2",
				Command:     "deckgraph duplicate --in deck.pptx --out out.pptx --slide 2",
			},
			{
				Description: "Insert three copies of slide id 257 with their own master after the first slide",
				Command:     "deckgraph duplicate -i deck.pptx -o out.pptx --id 257 --master -n 3 --to 2",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("duplicate", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			ref, err := params.ref()
			if err != nil {
				return err
			}
			if err := checkCount(params.Count); err != nil {
				return err
			}
			if err := a.setup("duplicate"); err != nil {
				return err
			}

			presentation, err := deck.Open(params.In, a.deckOptions())
			if err != nil {
				return err
			}
			for copyIndex := range params.Count {
				slide, err := presentation.DuplicateSlide(ref, deck.DuplicateOptions{DuplicateMaster: params.Master})
				if err != nil {
					return err
				}
				if slide == nil {
					return fmt.Errorf("%s has no slide at %s", params.In, ref)
				}
				if params.To != 0 {
					if _, err := presentation.MoveSlide(deck.ByID(slide.ID()), params.To-1+copyIndex); err != nil {
						return err
					}
				}
				a.printf("%s: slide %d at position %d\n", slide.Part().Name(), slide.ID(), presentation.Index(slide)+1)
			}

			if err := presentation.SaveFile(params.Out, deck.SaveOptions{}); err != nil {
				return err
			}
			a.logger.Info("slides duplicated", "in", params.In, "out", params.Out, "count", params.Count)
			return nil
		},
	}
}
