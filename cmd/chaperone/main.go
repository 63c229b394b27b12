// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// The chaperone command is the operator CLI for the Chaperone
// moderation core. It talks directly to the Matrix homeserver with the
// operator's saved access token: moderation actions (kick, ban, mute,
// redact), expiry sweeps, audit log queries, and permission resolution
// all run against live room state.
package main

import (
	"fmt"
	"os"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
)

func main() {
	if err := rootCommand().Execute(os.Args[1:]); err != nil {
		// Commands that already printed their own outcome (a denied
		// resolve, a failed action) return an ExitError carrying the
		// desired code; don't print a redundant "error:" line.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name: "chaperone",
		Description: `Chaperone: moderation core for Matrix-backed chat.

Run moderation actions against live room state, sweep expired bans and
mutes, query the per-room audit log, and resolve effective permissions
through role and channel overrides.`,
		Subcommands: []*cli.Command{
			loginCommand(),
			kickCommand(),
			banCommand(),
			unbanCommand(),
			muteCommand(),
			unmuteCommand(),
			redactCommand(),
			sweepCommand(),
			logCommand(),
			resolveCommand(),
			levelsCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Authenticate and save an access token",
				Command:     "chaperone login alice",
			},
			{
				Description: "Ban a spammer for a day",
				Command:     "chaperone ban '!general:example.org' @spammer:example.org --reason spam --duration 24h",
			},
			{
				Description: "Reverse any expired bans and mutes once",
				Command:     "chaperone sweep",
			},
			{
				Description: "Show the latest moderation actions in a room",
				Command:     "chaperone log '!general:example.org' --limit 20",
			},
			{
				Description: "Check whether a user may delete messages",
				Command:     "chaperone resolve '!general:example.org' @alice:example.org deleteMessages",
			},
		},
	}
}
