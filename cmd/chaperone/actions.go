// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/moderation"
)

func kickCommand() *cli.Command {
	var (
		common commonFlags
		reason string
	)
	return &cli.Command{
		Name:    "kick",
		Summary: "Remove a user from a room",
		Usage:   "chaperone kick <room> <user> [flags]",
		Description: `Remove a user from a room. The user may rejoin unless also banned.
Requires a power level at or above the room's kick threshold and
strictly above the target's level.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("kick", pflag.ContinueOnError)
			common.register(flags)
			flags.StringVar(&reason, "reason", "", "reason recorded in the audit log and shown to the target")
			return flags
		},
		Run: func(args []string) error {
			roomID, target, err := parseRoomAndUser(args, "chaperone kick <room> <user>")
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "kick")
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			moderator, session, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result := moderator.Kick(context.Background(), roomID, session.UserID(), target, reason)
			return printActionResult(result, common.jsonOutput)
		},
	}
}

func banCommand() *cli.Command {
	var (
		common   commonFlags
		reason   string
		duration time.Duration
	)
	return &cli.Command{
		Name:    "ban",
		Summary: "Ban a user from a room",
		Usage:   "chaperone ban <room> <user> [flags]",
		Description: `Ban a user from a room, removing them and preventing rejoin. With
--duration the ban is temporary: the sweeper reverses it once the
duration elapses. Without --duration the ban is permanent.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("ban", pflag.ContinueOnError)
			common.register(flags)
			flags.StringVar(&reason, "reason", "", "reason recorded in the audit log and shown to the target")
			flags.DurationVar(&duration, "duration", 0, "ban duration (e.g. 24h); zero means permanent")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Permanent ban",
				Command:     "chaperone ban '!general:example.org' @spammer:example.org --reason spam",
			},
			{
				Description: "One-week ban the sweeper will lift",
				Command:     "chaperone ban '!general:example.org' @spammer:example.org --duration 168h",
			},
		},
		Run: func(args []string) error {
			roomID, target, err := parseRoomAndUser(args, "chaperone ban <room> <user>")
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "ban")
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			moderator, session, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result := moderator.Ban(context.Background(), roomID, session.UserID(), target, moderation.BanOptions{
				Reason:   reason,
				Duration: duration,
			})
			return printActionResult(result, common.jsonOutput)
		},
	}
}

func unbanCommand() *cli.Command {
	var common commonFlags
	return &cli.Command{
		Name:    "unban",
		Summary: "Lift a user's ban",
		Usage:   "chaperone unban <room> <user> [flags]",
		Description: `Lift a ban so the user may rejoin the room. Requires a power level at
or above the room's ban threshold; the target's level is not compared
since a banned user holds no standing in the room.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("unban", pflag.ContinueOnError)
			common.register(flags)
			return flags
		},
		Run: func(args []string) error {
			roomID, target, err := parseRoomAndUser(args, "chaperone unban <room> <user>")
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "unban")
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			moderator, session, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result := moderator.Unban(context.Background(), roomID, session.UserID(), target)
			return printActionResult(result, common.jsonOutput)
		},
	}
}

func muteCommand() *cli.Command {
	var (
		common   commonFlags
		reason   string
		duration time.Duration
	)
	return &cli.Command{
		Name:    "mute",
		Summary: "Silence a user in a room",
		Usage:   "chaperone mute <room> <user> [flags]",
		Description: `Drop a user's power level below the room's send threshold so they can
read but not post. The user's prior level is recorded and restored on
unmute. With --duration the sweeper restores it automatically.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("mute", pflag.ContinueOnError)
			common.register(flags)
			flags.StringVar(&reason, "reason", "", "reason recorded in the audit log")
			flags.DurationVar(&duration, "duration", 0, "mute duration (e.g. 1h); zero means until unmuted")
			return flags
		},
		Run: func(args []string) error {
			roomID, target, err := parseRoomAndUser(args, "chaperone mute <room> <user>")
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "mute")
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			moderator, session, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result := moderator.Mute(context.Background(), roomID, session.UserID(), target, moderation.MuteOptions{
				Reason:   reason,
				Duration: duration,
			})
			return printActionResult(result, common.jsonOutput)
		},
	}
}

func unmuteCommand() *cli.Command {
	var common commonFlags
	return &cli.Command{
		Name:    "unmute",
		Summary: "Restore a muted user's power level",
		Usage:   "chaperone unmute <room> <user> [flags]",
		Description: `Restore a muted user to the power level they held before the mute. If
no mute record exists the user is restored to the room default.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("unmute", pflag.ContinueOnError)
			common.register(flags)
			return flags
		},
		Run: func(args []string) error {
			roomID, target, err := parseRoomAndUser(args, "chaperone unmute <room> <user>")
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "unmute")
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			moderator, session, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			result := moderator.Unmute(context.Background(), roomID, session.UserID(), target)
			return printActionResult(result, common.jsonOutput)
		},
	}
}
