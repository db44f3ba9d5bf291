// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/config"
	"github.com/deckgraph/deckgraph/lib/deck"
	"github.com/deckgraph/deckgraph/lib/policy"
)

// globalParams are the flags accepted before the command name.
type globalParams struct {
	Config   string `flag:"config" desc:"configuration file (default: $DECKGRAPH_CONFIG)"`
	LogLevel string `flag:"log-level" desc:"log level: debug, info, warn or error (overrides the configuration)"`
}

// app carries the state shared by every command: global flags and,
// once a command runs, the loaded configuration and logger.
type app struct {
	global globalParams
	stdout io.Writer

	config *config.Config
	rules  *policy.Policy
	logger *slog.Logger
}

func newApp(stdout io.Writer) *app {
	return &app{stdout: stdout}
}

func (a *app) rootCommand() *cli.Command {
	return &cli.Command{
		Name: "deckgraph",
		Description: `Deckgraph: slide duplication for presentation packages.

Each slide owns a graph of related parts (layouts, notes, images,
charts). Commands copy or share those parts according to the policy:
masters and layouts are shared unless asked otherwise, notes are copied,
and media is reused across duplicates.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("deckgraph", &a.global)
		},
		Subcommands: []*cli.Command{
			a.duplicateCommand(),
			a.removeCommand(),
			a.moveCommand(),
			a.captureCommand(),
			a.stampCommand(),
			a.inspectCommand(),
			a.treeCommand(),
			a.versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Append two copies of the first slide",
				Command:     "deckgraph duplicate --in deck.pptx --out out.pptx --slide 1 --count 2",
			},
			{
				Description: "Show what a slide is connected to",
				Command:     "deckgraph tree --in deck.pptx --slide 3",
			},
		},
	}
}

// setup loads the configuration and builds the logger for command.
func (a *app) setup(command string) error {
	var (
		cfg *config.Config
		err error
	)
	if a.global.Config != "" {
		cfg, err = config.LoadFile(a.global.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if a.global.LogLevel != "" {
		cfg.Logging.Level = a.global.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rules, err := cfg.Rules()
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger, err := cli.NewCommandLogger(level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	a.config = cfg
	a.rules = rules
	a.logger = logger.With("command", command)
	return nil
}

func (a *app) deckOptions() deck.Options {
	return deck.Options{Policy: a.rules, Logger: a.logger}
}

// modelPath places a bare model file name in the configured template
// directory.
func (a *app) modelPath(name string) string {
	if a.config.Template.Directory == "" || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(a.config.Template.Directory, name)
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}
