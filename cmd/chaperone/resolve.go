// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/pflag"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/authorization"
)

func resolveCommand() *cli.Command {
	var (
		common commonFlags
		roles  []string
		all    bool
	)
	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve a user's effective permission in a room",
		Usage:   "chaperone resolve <room> <user> [<capability>] [flags]",
		Description: `Resolve whether a user holds a capability in a room, walking the full
override chain: channel user overrides beat channel role overrides,
which beat role capabilities, which beat the power-level baseline. The
output names the layer that decided and why.

Role membership is not stored in room state; pass the user's roles
with repeated --role flags (admin, moderator, member). With --all,
every capability is resolved and listed instead of one.

Exits non-zero when the capability is denied.`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			common.register(flags)
			flags.StringArrayVar(&roles, "role", nil, "role template the user holds (repeatable)")
			flags.BoolVar(&all, "all", false, "resolve every capability")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Check a single capability for a moderator",
				Command:     "chaperone resolve '!general:example.org' @alice:example.org deleteMessages --role moderator",
			},
			{
				Description: "Dump a member's full capability set",
				Command:     "chaperone resolve '!general:example.org' @bob:example.org --all --role member",
			},
		},
		Run: func(args []string) error {
			if len(args) < 2 || (!all && len(args) != 3) || (all && len(args) != 2) {
				return fmt.Errorf("usage: chaperone resolve <room> <user> <capability> (or --all)")
			}
			roomID, userID, err := parseRoomAndUser(args[:2], "chaperone resolve <room> <user> <capability>")
			if err != nil {
				return err
			}

			userRoles, err := lookupRoles(roles)
			if err != nil {
				return err
			}

			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}
			logger := cli.NewCommandLogger().With("command", "resolve")
			client, session, err := cli.FromConfig(cfg).Connect()
			if err != nil {
				return err
			}
			defer func() {
				session.Close()
				client.CloseIdleConnections()
			}()

			resolver := authorization.NewResolver(session, cfg.Namespace(), logger)
			ctx := context.Background()

			if all {
				capabilities, err := resolver.BulkResolve(ctx, roomID, userID, userRoles)
				if err != nil {
					return err
				}
				return printCapabilityMap(capabilities, common.jsonOutput)
			}

			capability, err := authorization.ParseCapability(args[2])
			if err != nil {
				return err
			}
			result, err := resolver.Resolve(ctx, roomID, userID, capability, userRoles)
			if err != nil {
				return err
			}

			if common.jsonOutput {
				if err := cli.WriteJSON(result); err != nil {
					return err
				}
			} else {
				fmt.Printf("%s: %s (%s: %s)\n", capability, verdictWord(result.Allowed), result.Source, result.Reasoning)
			}
			if !result.Allowed {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

// lookupRoles maps role template IDs to full role definitions.
func lookupRoles(ids []string) ([]authorization.Role, error) {
	userRoles := make([]authorization.Role, 0, len(ids))
	for _, id := range ids {
		role, ok := authorization.TemplateByID(id)
		if !ok {
			return nil, fmt.Errorf("unknown role %q (expected admin, moderator, or member)", id)
		}
		userRoles = append(userRoles, role)
	}
	return userRoles, nil
}

func printCapabilityMap(capabilities map[authorization.Capability]bool, jsonOutput bool) error {
	if jsonOutput {
		named := make(map[string]bool, len(capabilities))
		for capability, allowed := range capabilities {
			named[capability.String()] = allowed
		}
		return cli.WriteJSON(named)
	}

	ordered := make([]authorization.Capability, 0, len(capabilities))
	for capability := range capabilities {
		ordered = append(ordered, capability)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })
	for _, capability := range ordered {
		fmt.Printf("%-20s %s\n", capability, verdictWord(capabilities[capability]))
	}
	return nil
}

func verdictWord(allowed bool) string {
	if allowed {
		return "allowed"
	}
	return "denied"
}
