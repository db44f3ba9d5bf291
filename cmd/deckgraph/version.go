// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/version"
)

type versionParams struct {
	Digest bool `flag:"digest" desc:"also print the blake3 digest of the running binary"`
}

func (a *app) versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("version", &params)
		},
		Run: func(args []string) error {
			a.printf("deckgraph %s\n", version.Full())
			if !params.Digest {
				return nil
			}
			digest, path, err := version.SelfDigest()
			if err != nil {
				return err
			}
			a.printf("  Binary: %s\n  Digest: %s\n", path, digest)
			return nil
		},
	}
}
