// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Deckgraph duplicates, removes, reorders and stamps the slides of a
// presentation package, carrying each slide's relationship subgraph
// along according to the copy/share policy.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return newApp(os.Stdout).rootCommand().Execute(os.Args[1:])
}
