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

type captureParams struct {
	In          string `flag:"in,i" desc:"presentation to capture" required:"true"`
	Out         string `flag:"out,o" desc:"model file to write (a bare name goes to the template directory)" required:"true"`
	Compression string `flag:"compression" desc:"none, lz4 or zstd (default: from the configuration)"`
}

func (a *app) captureCommand() *cli.Command {
	var params captureParams

	return &cli.Command{
		Name:    "capture",
		Summary: "Capture the slides of a presentation as a model file",
		Description: `Capture every slide of a presentation, with the parts it depends on,
into a model file. "deckgraph stamp" creates slides from the model in
any presentation.`,
		Usage: "deckgraph capture --in FILE --out FILE [--compression none|lz4|zstd]",
		Examples: []cli.Example{
			{
				Description: "Capture a deck with lz4 compression",
				Command:     "deckgraph capture --in library.pptx --out library.dgtm --compression lz4",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("capture", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if err := a.setup("capture"); err != nil {
				return err
			}
			compression, err := a.config.Compression()
			if params.Compression != "" {
				compression, err = template.ParseCompression(params.Compression)
			}
			if err != nil {
				return err
			}

			presentation, err := deck.Open(params.In, a.deckOptions())
			if err != nil {
				return err
			}
			model := presentation.CaptureModel()
			out := a.modelPath(params.Out)
			if err := template.WriteFile(out, model, compression); err != nil {
				return fmt.Errorf("writing model: %w", err)
			}
			a.printf("captured %d slides (%d parts) into %s\n", len(model.Slides), len(model.Nodes()), out)
			return nil
		},
	}
}
