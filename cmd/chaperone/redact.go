// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/ref"
)

func redactCommand() *cli.Command {
	var (
		common commonFlags
		reason string
	)
	return &cli.Command{
		Name:    "redact",
		Summary: "Delete one or more messages",
		Usage:   "chaperone redact <room> <event>... [flags]",
		Description: `Redact messages in a room. Anyone may redact their own messages;
redacting another user's message requires the room's redact threshold.

With multiple event IDs the deletions run independently: a failure on
one event does not stop the rest, and the summary reports both counts.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("redact", pflag.ContinueOnError)
			common.register(flags)
			flags.StringVar(&reason, "reason", "", "reason recorded in the audit log")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Delete a single message",
				Command:     "chaperone redact '!general:example.org' '$event1:example.org'",
			},
			{
				Description: "Bulk-delete a spam burst",
				Command:     "chaperone redact '!general:example.org' '$e1:example.org' '$e2:example.org' --reason spam",
			},
		},
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("usage: chaperone redact <room> <event>...")
			}
			roomID, err := ref.ParseRoomID(args[0])
			if err != nil {
				return err
			}
			eventIDs := make([]ref.EventID, 0, len(args)-1)
			for _, raw := range args[1:] {
				eventID, err := ref.ParseEventID(raw)
				if err != nil {
					return err
				}
				eventIDs = append(eventIDs, eventID)
			}

			logger := cli.NewCommandLogger().With("command", "redact")
			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			moderator, session, cleanup, err := connectModerator(cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			if len(eventIDs) == 1 {
				result := moderator.DeleteMessage(ctx, roomID, session.UserID(), eventIDs[0], reason)
				return printActionResult(result, common.jsonOutput)
			}

			result := moderator.BulkDeleteMessages(ctx, roomID, session.UserID(), eventIDs, reason)
			if common.jsonOutput {
				if err := cli.WriteJSON(result); err != nil {
					return err
				}
				if !result.Success {
					return &cli.ExitError{Code: 1}
				}
				return nil
			}
			fmt.Printf("deleted %d of %d messages\n", result.DeletedCount, len(eventIDs))
			for _, failure := range result.Errors {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", failure.EventID, failure.Error)
			}
			if !result.Success {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}
