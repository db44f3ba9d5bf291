// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/deck"
	"github.com/deckgraph/deckgraph/lib/template"
)

type stampParams struct {
	Template string `flag:"template,t" desc:"model file written by capture (a bare name is looked up in the template directory)" required:"true"`
	paths
	slideSelection
	Count int `flag:"count,n" desc:"number of slides to create" default:"1"`
}

func (a *app) stampCommand() *cli.Command {
	var params stampParams

	return &cli.Command{
		Name:    "stamp",
		Summary: "Create slides from a captured model",
		Description: `Create slides in a presentation from a slide of a captured model.

Masters, layouts and media the presentation already holds are reused
when their content matches the captured part; everything else is
created. The slide is selected by its position or id in the model.`,
		Usage: "deckgraph stamp --template FILE --in FILE --out FILE (--slide N | --id N) [--count N]",
		Examples: []cli.Example{
			{
				Description: "Add the model's title slide to a deck",
				Command:     "deckgraph stamp -t library.dgtm --in deck.pptx --out out.pptx --slide 1",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("stamp", &params)
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
			if err := a.setup("stamp"); err != nil {
				return err
			}

			model, err := template.ReadFile(a.modelPath(params.Template))
			if err != nil {
				return err
			}
			presentation, err := deck.Open(params.In, a.deckOptions())
			if err != nil {
				return err
			}
			for range params.Count {
				slide, err := presentation.MaterializeSlide(model, ref)
				if err != nil {
					return err
				}
				if slide == nil {
					return fmt.Errorf("%s has no slide at %s", params.Template, ref)
				}
				a.printf("%s: slide %d\n", slide.Part().Name(), slide.ID())
			}
			return presentation.SaveFile(params.Out, deck.SaveOptions{})
		},
	}
}
