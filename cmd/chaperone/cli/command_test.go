// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestExecuteDispatchesSubcommand(t *testing.T) {
	t.Parallel()

	var ran []string
	root := &Command{
		Name: "chaperone",
		Subcommands: []*Command{
			{
				Name: "ban",
				Run: func(args []string) error {
					ran = append(ran, "ban")
					ran = append(ran, args...)
					return nil
				},
			},
		},
	}

	if err := root.Execute([]string{"ban", "!room:example.org"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(ran) != 2 || ran[0] != "ban" || ran[1] != "!room:example.org" {
		t.Errorf("ran = %v", ran)
	}
}

func TestExecuteSuggestsClosestCommand(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name: "chaperone",
		Subcommands: []*Command{
			{Name: "unban", Run: func([]string) error { return nil }},
			{Name: "unmute", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"unbna"})
	if err == nil {
		t.Fatal("unknown command did not error")
	}
	if !strings.Contains(err.Error(), `did you mean "unban"`) {
		t.Errorf("error = %q, want unban suggestion", err)
	}
}

func TestExecuteParsesFlags(t *testing.T) {
	t.Parallel()

	var reason string
	command := &Command{
		Name: "kick",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("kick", pflag.ContinueOnError)
			flags.StringVar(&reason, "reason", "", "reason shown to the target")
			return flags
		},
		Run: func(args []string) error { return nil },
	}

	if err := command.Execute([]string{"--reason", "spam", "@user:example.org"}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if reason != "spam" {
		t.Errorf("reason = %q, want spam", reason)
	}
}

func TestExecuteSuggestsClosestFlag(t *testing.T) {
	t.Parallel()

	command := &Command{
		Name: "kick",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("kick", pflag.ContinueOnError)
			flags.String("reason", "", "")
			return flags
		},
		Run: func(args []string) error { return nil },
	}

	err := command.Execute([]string{"--raeson", "spam"})
	if err == nil {
		t.Fatal("unknown flag did not error")
	}
	if !strings.Contains(err.Error(), "--reason") {
		t.Errorf("error = %q, want --reason suggestion", err)
	}
}

func TestPrintHelpListsSubcommands(t *testing.T) {
	t.Parallel()

	root := &Command{
		Name:    "chaperone",
		Summary: "Moderation CLI",
		Subcommands: []*Command{
			{Name: "ban", Summary: "Ban a user from a room"},
			{Name: "sweep", Summary: "Reverse expired bans and mutes"},
		},
	}

	var output strings.Builder
	root.PrintHelp(&output)
	help := output.String()
	for _, want := range []string{"ban", "Ban a user from a room", "sweep", "chaperone <command>"} {
		if !strings.Contains(help, want) {
			t.Errorf("help output missing %q:\n%s", want, help)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"", "ban", 3},
		{"ban", "ban", 0},
		{"unbna", "unban", 2},
		{"kick", "lock", 2},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
