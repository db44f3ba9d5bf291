// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command represents a CLI command or subcommand.
type Command struct {
	// Name is the command name as typed by the user (e.g., "duplicate").
	Name string

	// Summary is a one-line description shown in the parent's help listing.
	Summary string

	// Description is a detailed multi-line description shown in the command's
	// own help output.
	Description string

	// Usage is the usage string (e.g., "deckgraph duplicate [flags]").
	// If empty, it is synthesized from the command path and subcommands.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Flags returns a configured *pflag.FlagSet for this command. Called
	// lazily on first use. If nil, the command accepts no flags.
	//
	// Flags of a command with subcommands are parsed up to the first
	// positional argument, which then selects the subcommand.
	Flags func() *pflag.FlagSet

	// Subcommands are nested commands dispatched by the first positional arg.
	Subcommands []*Command

	// Run executes the command with the remaining args (after flag parsing).
	// Exactly one of Run or Subcommands should be set. If both are set,
	// Run is used when no subcommand is named.
	Run func(args []string) error

	// Output receives help text. Defaults to stderr.
	Output io.Writer

	// parent is set during dispatch to build the full command path for help.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and dispatches to the appropriate subcommand or Run
// function. This is the main entry point for the command tree.
func (c *Command) Execute(args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.output())
		return nil
	}

	if c.Flags != nil {
		flagSet := c.Flags()

		// We format our own error messages with suggestions.
		flagSet.SetOutput(io.Discard)
		if len(c.Subcommands) > 0 {
			flagSet.SetInterspersed(false)
		}

		if err := flagSet.Parse(args); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				c.PrintHelp(c.output())
				return nil
			}
			errMsg := err.Error()
			if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown shorthand flag") {
				// A fresh flag set: the failed parse may have consumed state.
				if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
					return fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
						errMsg, suggestion, c.fullName())
				}
			}
			return fmt.Errorf("%s\n\nRun '%s --help' for usage.", errMsg, c.fullName())
		}
		if err := checkRequired(flagSet); err != nil {
			return fmt.Errorf("%w\n\nRun '%s --help' for usage.", err, c.fullName())
		}
		args = flagSet.Args()
	}

	if len(c.Subcommands) > 0 && len(args) > 0 {
		name := args[0]
		if isHelpFlag(name) {
			c.PrintHelp(c.output())
			return nil
		}
		for _, sub := range c.Subcommands {
			if sub.Name == name {
				sub.parent = c
				return sub.Execute(args[1:])
			}
		}
		if c.Run == nil {
			suggestion := suggestCommand(name, c.Subcommands)
			if suggestion != "" {
				return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
					name, suggestion, c.fullName())
			}
			return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.",
				name, c.fullName())
		}
	}

	if c.Run != nil {
		return c.Run(args)
	}

	c.PrintHelp(c.output())
	if len(c.Subcommands) > 0 {
		return fmt.Errorf("subcommand required")
	}
	return fmt.Errorf("no action defined for %q", c.fullName())
}

// checkRequired reports the first flag annotated as required that was
// not set on the command line.
func checkRequired(flagSet *pflag.FlagSet) error {
	var missing []string
	flagSet.VisitAll(func(flag *pflag.Flag) {
		if _, ok := flag.Annotations[requiredAnnotation]; ok && !flag.Changed {
			missing = append(missing, "--"+flag.Name)
		}
	})
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "Usage:\n  %s [flags] <command> [flags]\n", name)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		usages := c.Flags().FlagUsages()
		if usages != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usages)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

func (c *Command) output() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.Output != nil {
			return command.Output
		}
	}
	return os.Stderr
}

// fullName returns the complete command path (e.g., "deckgraph duplicate").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
