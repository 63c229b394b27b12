// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/moderation"
)

// roomSweepReport is the JSON shape for one room's sweep outcome.
type roomSweepReport struct {
	RoomID ref.RoomID             `json:"room_id"`
	Bans   moderation.SweepResult `json:"bans"`
	Mutes  moderation.SweepResult `json:"mutes"`
	Errors []string               `json:"errors,omitempty"`
}

func sweepCommand() *cli.Command {
	var (
		common commonFlags
		watch  bool
	)
	return &cli.Command{
		Name:    "sweep",
		Summary: "Reverse expired bans and mutes",
		Usage:   "chaperone sweep [<room>...] [flags]",
		Description: `Scan sanction records in the configured rooms (or the rooms given as
arguments) and reverse any whose expiry has passed: expired bans are
lifted and expired mutes restore the user's prior power level. Each
reversal is logged as an automatic action.

Sweeps are idempotent; running twice in a row does no extra work. With
--watch the command keeps sweeping at the configured interval until
interrupted.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("sweep", pflag.ContinueOnError)
			common.register(flags)
			flags.BoolVar(&watch, "watch", false, "keep sweeping at the configured interval")
			return flags
		},
		Run: func(args []string) error {
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}

			var rooms []ref.RoomID
			if len(args) > 0 {
				for _, raw := range args {
					roomID, err := ref.ParseRoomID(raw)
					if err != nil {
						return err
					}
					rooms = append(rooms, roomID)
				}
			} else {
				rooms, err = cfg.SweepRooms()
				if err != nil {
					return err
				}
			}
			if len(rooms) == 0 {
				return fmt.Errorf("no rooms to sweep; pass room IDs or set moderation.sweep_rooms")
			}

			logger := cli.NewCommandLogger().With("command", "sweep")
			moderator, _, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			if watch {
				interval, err := cfg.SweepInterval()
				if err != nil {
					return err
				}
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				logger.Info("sweeper started", "rooms", len(rooms), "interval", interval)
				moderation.NewSweeper(moderator, rooms, interval).Run(ctx)
				return nil
			}

			return sweepOnce(context.Background(), moderator, rooms, common.jsonOutput)
		},
	}
}

func sweepOnce(ctx context.Context, moderator *moderation.Moderator, rooms []ref.RoomID, jsonOutput bool) error {
	reports := make([]roomSweepReport, 0, len(rooms))
	failed := false
	for _, roomID := range rooms {
		report := roomSweepReport{RoomID: roomID}

		bans, err := moderator.CheckExpiredBans(ctx, roomID)
		report.Bans = bans
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		}
		mutes, err := moderator.CheckExpiredMutes(ctx, roomID)
		report.Mutes = mutes
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
		}

		if len(report.Errors) > 0 || len(bans.Errors) > 0 || len(mutes.Errors) > 0 {
			failed = true
		}
		reports = append(reports, report)
	}

	if jsonOutput {
		if err := cli.WriteJSON(reports); err != nil {
			return err
		}
	} else {
		for _, report := range reports {
			fmt.Printf("%s: %d/%d bans lifted, %d/%d mutes restored\n",
				report.RoomID,
				report.Bans.RevertedCount, report.Bans.CheckedCount,
				report.Mutes.RevertedCount, report.Mutes.CheckedCount)
			for _, failure := range append(report.Bans.Errors, report.Mutes.Errors...) {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", failure.UserID, failure.Error)
			}
			for _, message := range report.Errors {
				fmt.Fprintf(os.Stderr, "  %s\n", message)
			}
		}
	}
	if failed {
		return &cli.ExitError{Code: 1}
	}
	return nil
}
