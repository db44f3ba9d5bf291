// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"path"

	"github.com/charmbracelet/lipgloss"
	"github.com/ddddddO/gtree"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/deckgraph/deckgraph/cmd/deckgraph/cli"
	"github.com/deckgraph/deckgraph/lib/deck"
	"github.com/deckgraph/deckgraph/lib/opc"
)

type treeParams struct {
	In    string `flag:"in,i" desc:"presentation to show" required:"true"`
	Slide int    `flag:"slide" desc:"show only the slide at this position, starting at 1"`
	Color string `flag:"color" desc:"auto, always or never" default:"auto"`
}

// rendererOptions maps a --color value to lipgloss renderer options.
func rendererOptions(color string) ([]termenv.OutputOption, error) {
	switch color {
	case "auto":
		return nil, nil
	case "always":
		return []termenv.OutputOption{termenv.WithProfile(termenv.ANSI256)}, nil
	case "never":
		return []termenv.OutputOption{termenv.WithProfile(termenv.Ascii)}, nil
	default:
		return nil, fmt.Errorf("unknown --color %q (want auto, always or never)", color)
	}
}

// treeStyles decorates tree labels. With --color auto, styles render
// plain text when the output is not a terminal.
type treeStyles struct {
	part     lipgloss.Style
	relation lipgloss.Style
	note     lipgloss.Style
}

func (a *app) treeCommand() *cli.Command {
	var params treeParams

	return &cli.Command{
		Name:    "tree",
		Summary: "Show the relationship graph of each slide",
		Description: `Show each slide with the parts it reaches through relationships.

A part reached a second time from the same slide is marked "(seen)" and
not expanded again. Links to other slides are shown but not followed.`,
		Usage: "deckgraph tree --in FILE [--slide N] [--color auto|always|never]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("tree", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			options, err := rendererOptions(params.Color)
			if err != nil {
				return err
			}
			if err := a.setup("tree"); err != nil {
				return err
			}
			presentation, err := deck.Open(params.In, a.deckOptions())
			if err != nil {
				return err
			}

			slides := presentation.Slides()
			if params.Slide != 0 {
				slide := presentation.Slide(deck.ByIndex(params.Slide - 1))
				if params.Slide < 0 || slide == nil {
					return fmt.Errorf("%s has no slide at position %d", params.In, params.Slide)
				}
				slides = []*deck.Slide{slide}
			}

			renderer := lipgloss.NewRenderer(a.stdout, options...)
			styles := treeStyles{
				part:     renderer.NewStyle().Bold(true),
				relation: renderer.NewStyle().Foreground(lipgloss.Color("6")),
				note:     renderer.NewStyle().Faint(true),
			}
			root := gtree.NewRoot(styles.part.Render(presentation.Part().Name().String()))
			for _, slide := range slides {
				node := root.Add(fmt.Sprintf("%s %s",
					styles.part.Render(slide.Part().Name().String()),
					styles.note.Render(fmt.Sprintf("(slide %d)", slide.ID()))))
				addRelationships(node, slide.Part(), map[*opc.Part]bool{slide.Part(): true}, styles)
			}
			return gtree.OutputFromRoot(a.stdout, root)
		},
	}
}

// addRelationships adds a child of node for every relationship of
// owner, expanding each target part the first time it is reached.
func addRelationships(node *gtree.Node, owner *opc.Part, seen map[*opc.Part]bool, styles treeStyles) {
	for _, relationship := range owner.Relationships().All() {
		label := styles.relation.Render(relationship.ID+" "+path.Base(relationship.Type)) + " "
		switch {
		case relationship.External:
			node.Add(label + relationship.TargetRef + " " + styles.note.Render("(external)"))
			continue
		case relationship.Target == nil:
			node.Add(label + relationship.TargetRef + " " + styles.note.Render("(missing)"))
			continue
		}

		target := relationship.Target
		label += styles.part.Render(target.Name().String())
		switch {
		case seen[target]:
			node.Add(label + " " + styles.note.Render("(seen)"))
		case target.ContentType() == opc.ContentTypeSlide:
			node.Add(label)
		default:
			seen[target] = true
			addRelationships(node.Add(label), target, seen, styles)
		}
	}
}
