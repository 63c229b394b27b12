// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
)

func logCommand() *cli.Command {
	var (
		common commonFlags
		limit  int
	)
	return &cli.Command{
		Name:    "log",
		Summary: "Query a room's moderation audit log",
		Usage:   "chaperone log <room> [flags]",
		Description: `Print a room's moderation audit log, newest first. Every moderation
action — manual or automatic — appends an entry; entries are never
rewritten or deleted once recorded.

Without --limit the configured default limit applies; --limit 0 prints
everything retained.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("log", pflag.ContinueOnError)
			common.register(flags)
			flags.IntVar(&limit, "limit", -1, "maximum entries to print (0 for all)")
			return flags
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: chaperone log <room>")
			}
			roomID, err := ref.ParseRoomID(args[0])
			if err != nil {
				return err
			}

			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			if limit < 0 {
				limit = cfg.Moderation.LogQueryLimit
			}

			logger := cli.NewCommandLogger().With("command", "log")
			moderator, _, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := moderator.QueryLog(context.Background(), roomID, limit)
			if err != nil {
				return err
			}

			if common.jsonOutput {
				return cli.WriteJSON(entries)
			}
			printLogEntries(entries)
			return nil
		},
	}
}

func printLogEntries(entries []schema.ModerationLogEntry) {
	if len(entries) == 0 {
		fmt.Println("no moderation actions recorded")
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 2, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tACTOR\tTARGET\tREASON")
	for _, entry := range entries {
		action := string(entry.Action)
		if entry.Automatic {
			action += " (auto)"
		}
		target := entry.TargetID.String()
		if !entry.EventID.IsZero() {
			target = entry.EventID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			time.UnixMilli(entry.Timestamp).UTC().Format(time.RFC3339),
			action,
			entry.ActorID,
			target,
			entry.Reason)
	}
	tw.Flush()
}
