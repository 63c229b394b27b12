// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import "testing"

func TestTemplateByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id        string
		wantID    string
		wantLevel int
		wantOK    bool
	}{
		{"administrator", "administrator", 100, true},
		{"admin", "administrator", 100, true},
		{"moderator", "moderator", 50, true},
		{"mod", "moderator", 50, true},
		{"member", "member", 0, true},
		{"owner", "", 0, false},
		{"", "", 0, false},
	}
	for _, test := range tests {
		role, ok := TemplateByID(test.id)
		if ok != test.wantOK {
			t.Errorf("TemplateByID(%q) ok = %v, want %v", test.id, ok, test.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if role.ID != test.wantID || role.PowerLevel != test.wantLevel {
			t.Errorf("TemplateByID(%q) = %s at %d, want %s at %d",
				test.id, role.ID, role.PowerLevel, test.wantID, test.wantLevel)
		}
	}
}

func TestHighestPowerLevel(t *testing.T) {
	t.Parallel()

	moderator, _ := TemplateByID("moderator")
	member, _ := TemplateByID("member")

	if got := HighestPowerLevel(nil); got != 0 {
		t.Errorf("HighestPowerLevel(nil) = %d, want 0", got)
	}
	if got := HighestPowerLevel([]Role{member, moderator}); got != 50 {
		t.Errorf("HighestPowerLevel = %d, want 50", got)
	}
}
