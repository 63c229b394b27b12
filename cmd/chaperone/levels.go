// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/authorization"
	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
)

func levelsCommand() *cli.Command {
	return &cli.Command{
		Name:    "levels",
		Summary: "Inspect and apply room power levels",
		Description: `Inspect a room's power-level document, or materialize a role template's
capabilities into power-level thresholds and apply them to the room.`,
		Subcommands: []*cli.Command{
			levelsShowCommand(),
			levelsApplyCommand(),
			levelsGrantCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Dump a room's power-level document",
				Command:     "chaperone levels show '!general:example.org'",
			},
			{
				Description: "Raise the room's thresholds to the moderator template",
				Command:     "chaperone levels apply '!general:example.org' --role moderator",
			},
			{
				Description: "Grant a user the moderator power level",
				Command:     "chaperone levels grant '!general:example.org' @alice:example.org 50",
			},
		},
	}
}

func levelsShowCommand() *cli.Command {
	var common commonFlags
	return &cli.Command{
		Name:    "show",
		Summary: "Print a room's power-level document",
		Usage:   "chaperone levels show <room> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("show", pflag.ContinueOnError)
			common.register(flags)
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: chaperone levels show <room>")
			}
			roomID, err := ref.ParseRoomID(args[0])
			if err != nil {
				return err
			}

			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			client, session, err := cli.FromConfig(cfg).Connect()
			if err != nil {
				return err
			}
			defer func() {
				session.Close()
				client.CloseIdleConnections()
			}()

			powerLevels, err := schema.GetPowerLevels(context.Background(), session, roomID)
			if err != nil {
				return err
			}
			return cli.WriteJSON(powerLevels)
		},
	}
}

func levelsApplyCommand() *cli.Command {
	var (
		common commonFlags
		roleID string
		dryRun bool
	)
	return &cli.Command{
		Name:    "apply",
		Summary: "Apply a role template's thresholds to a room",
		Usage:   "chaperone levels apply <room> --role <id> [flags]",
		Description: `Materialize a role template's capability set into power-level
thresholds and write them to the room. Existing thresholds are only
raised, never lowered, and user assignments are preserved.

The template is validated against its own power level first; an
inconsistent template (a capability its level cannot reach) aborts
before anything is written. --dry-run prints the resulting document
without writing it.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("apply", pflag.ContinueOnError)
			common.register(flags)
			flags.StringVar(&roleID, "role", "", "role template to materialize (admin, moderator, member)")
			flags.BoolVar(&dryRun, "dry-run", false, "print the resulting document without writing")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: chaperone levels apply <room> --role <id>")
			}
			if roleID == "" {
				return fmt.Errorf("--role is required")
			}
			roomID, err := ref.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			role, ok := authorization.TemplateByID(roleID)
			if !ok {
				return fmt.Errorf("unknown role %q (expected admin, moderator, or member)", roleID)
			}

			if problems := authorization.Validate(role.Capabilities, role.PowerLevel); len(problems) > 0 {
				for _, problem := range problems {
					fmt.Fprintf(os.Stderr, "invalid template: %s\n", problem)
				}
				return &cli.ExitError{Code: 1}
			}

			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			client, session, err := cli.FromConfig(cfg).Connect()
			if err != nil {
				return err
			}
			defer func() {
				session.Close()
				client.CloseIdleConnections()
			}()

			ctx := context.Background()
			baseline, err := schema.GetPowerLevels(ctx, session, roomID)
			if err != nil {
				return err
			}

			materialized := authorization.MaterializePowerLevels(role.Capabilities, baseline)
			if dryRun || common.jsonOutput {
				if err := cli.WriteJSON(materialized); err != nil {
					return err
				}
				if dryRun {
					return nil
				}
			}

			if _, err := session.SendStateEvent(ctx, roomID, schema.MatrixEventTypePowerLevels, "", materialized); err != nil {
				return fmt.Errorf("writing power levels for %s: %w", roomID, err)
			}
			if !common.jsonOutput {
				fmt.Printf("applied %s thresholds to %s\n", role.ID, roomID)
			}
			return nil
		},
	}
}

func levelsGrantCommand() *cli.Command {
	var common commonFlags
	return &cli.Command{
		Name:    "grant",
		Summary: "Set a user's power level in a room",
		Usage:   "chaperone levels grant <room> <user> <level> [flags]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("grant", pflag.ContinueOnError)
			common.register(flags)
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 3 {
				return fmt.Errorf("usage: chaperone levels grant <room> <user> <level>")
			}
			roomID, userID, err := parseRoomAndUser(args[:2], "chaperone levels grant <room> <user> <level>")
			if err != nil {
				return err
			}
			level, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid power level %q: %w", args[2], err)
			}

			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			client, session, err := cli.FromConfig(cfg).Connect()
			if err != nil {
				return err
			}
			defer func() {
				session.Close()
				client.CloseIdleConnections()
			}()

			if err := schema.SetUserPowerLevel(context.Background(), session, roomID, userID, level); err != nil {
				return err
			}
			fmt.Printf("set %s to level %d in %s\n", userID, level, roomID)
			return nil
		},
	}
}
