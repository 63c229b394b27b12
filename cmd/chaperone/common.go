// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/clock"
	"github.com/chaperone-chat/chaperone/lib/config"
	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/messaging"
	"github.com/chaperone-chat/chaperone/moderation"
)

// commonFlags carries the flags shared by every command that talks to
// the homeserver.
type commonFlags struct {
	configPath string
	jsonOutput bool
}

func (flags *commonFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&flags.configPath, "config", "", "config file path (defaults to $CHAPERONE_CONFIG)")
	flagSet.BoolVar(&flags.jsonOutput, "json", false, "emit machine-readable JSON instead of text")
}

// loadConfig loads and validates the configuration, preferring the
// --config flag over the CHAPERONE_CONFIG environment variable.
func (flags *commonFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connectModerator opens an authenticated session and wraps it in a
// Moderator. The returned cleanup closes the session and the client's
// idle connections.
func connectModerator(cfg *config.Config, logger *slog.Logger) (*moderation.Moderator, *messaging.DirectSession, func(), error) {
	client, session, err := cli.FromConfig(cfg).Connect()
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() {
		session.Close()
		client.CloseIdleConnections()
	}
	moderator := moderation.NewModerator(session, cfg.Namespace(), clock.Real(), logger)
	return moderator, session, cleanup, nil
}

// parseRoomAndUser parses the two positional arguments every targeted
// moderation command takes.
func parseRoomAndUser(args []string, usage string) (ref.RoomID, ref.UserID, error) {
	if len(args) != 2 {
		return ref.RoomID{}, ref.UserID{}, fmt.Errorf("usage: %s", usage)
	}
	roomID, err := ref.ParseRoomID(args[0])
	if err != nil {
		return ref.RoomID{}, ref.UserID{}, err
	}
	userID, err := ref.ParseUserID(args[1])
	if err != nil {
		return ref.RoomID{}, ref.UserID{}, err
	}
	return roomID, userID, nil
}

// printActionResult reports a moderation outcome and converts failure
// into a non-zero exit without a redundant error line.
func printActionResult(result moderation.ActionResult, jsonOutput bool) error {
	if jsonOutput {
		if err := cli.WriteJSON(result); err != nil {
			return err
		}
		if !result.Success {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	if result.Success {
		if !result.EventID.IsZero() {
			fmt.Printf("ok (event %s)\n", result.EventID)
		} else {
			fmt.Println("ok")
		}
		return nil
	}
	fmt.Fprintf(os.Stderr, "denied (%s): %s\n", result.Code, result.Reason)
	return &cli.ExitError{Code: 1}
}
