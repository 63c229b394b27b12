// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the chaperone
// moderation CLI.
//
// The central type is [Command]: a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. Commands are assembled into a tree in cmd/chaperone/main.go
// and dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and structured help output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// The package also provides [SessionConfig], the shared way moderation
// commands open an authenticated Matrix session from the config file's
// homeserver section and saved access token.
package cli
