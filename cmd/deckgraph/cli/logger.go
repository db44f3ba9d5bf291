// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for command
// operations, writing to stderr. Format "auto" uses slog.TextHandler
// when stderr is a terminal and slog.JSONHandler when it is piped or
// redirected (CI, scripts, tests).
//
// Callers scope the logger with command-specific context via With():
//
//	logger := logger.With("command", "duplicate", "in", params.In)
func NewCommandLogger(level slog.Level, format string) (*slog.Logger, error) {
	return newLogger(os.Stderr, level, format, term.IsTerminal(int(os.Stderr.Fd())))
}

func newLogger(w io.Writer, level slog.Level, format string, terminal bool) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}
	switch format {
	case "auto", "":
		if terminal {
			return slog.New(slog.NewTextHandler(w, options)), nil
		}
		return slog.New(slog.NewJSONHandler(w, options)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, options)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want auto, text or json)", format)
	}
}
