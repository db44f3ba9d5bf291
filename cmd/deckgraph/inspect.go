// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/template"
)

type inspectParams struct {
	Model string `flag:"model,m" desc:"model file written by capture" required:"true"`
}

func (a *app) inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Print a model file in CBOR diagnostic notation",
		Usage:   "deckgraph inspect --model FILE",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("inspect", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			if err := a.setup("inspect"); err != nil {
				return err
			}
			file, err := os.Open(a.modelPath(params.Model))
			if err != nil {
				return err
			}
			defer file.Close()
			diagnostic, err := template.Inspect(file)
			if err != nil {
				return fmt.Errorf("%s: %w", params.Model, err)
			}
			a.printf("%s\n", diagnostic)
			return nil
		},
	}
}
