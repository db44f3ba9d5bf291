// Copyright 2026 The Deckgraph Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for deckgraph.
//
// Configuration is loaded from a single file specified by either the
// DECKGRAPH_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks, no ~/.config discovery,
// and no automatic file search. Running without a configuration file
// uses [Default].
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a config value.
//
// Key exports:
//
//   - [Config] -- master struct with Logging, Policy, Template
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Rules] -- the compiled copy/share policy
package config
