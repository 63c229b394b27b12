// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/chaperone-chat/chaperone/cmd/chaperone/cli"
	"github.com/chaperone-chat/chaperone/lib/secret"
	"github.com/chaperone-chat/chaperone/messaging"
)

func loginCommand() *cli.Command {
	var (
		common       commonFlags
		passwordFile string
	)
	return &cli.Command{
		Name:    "login",
		Summary: "Authenticate and save an access token",
		Usage:   "chaperone login <username> [flags]",
		Description: `Authenticate against the configured homeserver with a password and
save the resulting access token to the configured token path. Later
commands read the token from that file; the password is never stored.

The password is prompted interactively when stdin is a terminal.
Otherwise it is read from stdin, or from --password-file when given
("-" also reads stdin).`,
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("login", pflag.ContinueOnError)
			common.register(flags)
			flags.StringVar(&passwordFile, "password-file", "", "read the password from this file instead of prompting")
			return flags
		},
		Examples: []cli.Example{
			{
				Description: "Interactive login",
				Command:     "chaperone login alice",
			},
			{
				Description: "Non-interactive login for scripts",
				Command:     "chaperone login alice --password-file /run/secrets/chaperone-password",
			},
		},
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("usage: chaperone login <username>")
			}
			username := args[0]

			cfg, err := common.loadConfig()
			if err != nil {
				return err
			}

			password, err := readLoginPassword(username, passwordFile)
			if err != nil {
				return err
			}
			defer password.Close()

			client, err := messaging.NewClient(messaging.ClientConfig{
				HomeserverURL: cfg.Homeserver.URL,
			})
			if err != nil {
				return err
			}
			defer client.CloseIdleConnections()

			ctx := context.Background()
			session, err := client.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}
			defer session.Close()

			// Round-trip the token before persisting it.
			userID, err := session.WhoAmI(ctx)
			if err != nil {
				return fmt.Errorf("verifying session: %w", err)
			}

			tokenPath := cfg.Homeserver.TokenPath
			if err := os.MkdirAll(filepath.Dir(tokenPath), 0o700); err != nil {
				return fmt.Errorf("creating token directory: %w", err)
			}
			if err := os.WriteFile(tokenPath, []byte(session.AccessToken()), 0o600); err != nil {
				return fmt.Errorf("writing token: %w", err)
			}

			fmt.Printf("logged in as %s\n", userID)
			fmt.Printf("access token saved to %s\n", tokenPath)
			if cfg.Homeserver.UserID != userID.String() {
				fmt.Printf("note: set homeserver.user_id to %q in the config file\n", userID)
			}
			return nil
		},
	}
}

// readLoginPassword obtains the login password from the password file,
// an interactive prompt, or piped stdin, in that order of preference.
func readLoginPassword(username, passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" {
		return secret.ReadFromPath(passwordFile)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintf(os.Stderr, "password for %s: ", username)
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, fmt.Errorf("reading password: %w", err)
		}
		defer secret.Zero(raw)
		return secret.NewFromBytes(raw)
	}
	return secret.ReadFromPath("-")
}
