// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"testing"

	"github.com/chaperone-chat/chaperone/lib/schema"
)

func TestRequiredPowerLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		set  Set
		want int
	}{
		{
			name: "administrator requires 100",
			set:  NewSet(CapabilityAdministrator),
			want: 100,
		},
		{
			name: "moderation capabilities require 50",
			set:  NewSet(CapabilityKickMembers, CapabilityBanMembers, CapabilityDeleteMessages),
			want: 50,
		},
		{
			name: "member capabilities require 0",
			set:  NewSet(CapabilitySendMessages, CapabilityAddReactions),
			want: 0,
		},
		{
			name: "disabled capabilities contribute nothing",
			set:  Set{CapabilityAdministrator: false, CapabilitySendMessages: true},
			want: 0,
		},
		{
			name: "soft capabilities contribute nothing",
			set:  NewSet(CapabilityUseSlashCommands, CapabilityViewServerInsights),
			want: 0,
		},
		{
			name: "empty set",
			set:  Set{},
			want: 0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if got := RequiredPowerLevel(test.set); got != test.want {
				t.Errorf("RequiredPowerLevel() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestMaterializePowerLevels(t *testing.T) {
	t.Parallel()

	t.Run("from protocol defaults", func(t *testing.T) {
		t.Parallel()
		document := MaterializePowerLevels(NewSet(CapabilityKickMembers, CapabilityPinMessages), nil)

		if document.KickLevel() != 50 {
			t.Errorf("kick = %d, want 50", document.KickLevel())
		}
		if document.EventLevel("m.room.pinned_events", true) != 50 {
			t.Errorf("pinned_events = %d, want 50", document.EventLevel("m.room.pinned_events", true))
		}
		// Untouched thresholds keep their defaults.
		if document.BanLevel() != 50 || document.InviteLevel() != 25 {
			t.Error("untouched thresholds drifted from protocol defaults")
		}
	})

	t.Run("raises but never lowers dedicated thresholds", func(t *testing.T) {
		t.Parallel()
		baseline := &schema.PowerLevels{Kick: intPointer(75)}
		document := MaterializePowerLevels(NewSet(CapabilityKickMembers), baseline)
		if document.KickLevel() != 75 {
			t.Errorf("kick = %d, want baseline 75 preserved", document.KickLevel())
		}
	})

	t.Run("does not mutate the baseline", func(t *testing.T) {
		t.Parallel()
		baseline := &schema.PowerLevels{
			Events: map[string]int{"m.room.name": 0},
		}
		MaterializePowerLevels(NewSet(CapabilityManageChannels), baseline)
		if baseline.Events["m.room.name"] != 0 {
			t.Error("baseline events map was mutated")
		}
	})

	t.Run("mention everyone raises notifications.room", func(t *testing.T) {
		t.Parallel()
		document := MaterializePowerLevels(NewSet(CapabilityMentionEveryone), nil)
		if document.Notifications["room"] != 50 {
			t.Errorf("notifications.room = %d, want 50", document.Notifications["room"])
		}
	})
}

func TestValidate(t *testing.T) {
	t.Parallel()

	adminSet := NewSet(CapabilityAdministrator, CapabilityViewChannels, CapabilitySendMessages)

	if problems := Validate(adminSet, 100); len(problems) != 0 {
		t.Errorf("Validate(admin, 100) = %v, want no problems", problems)
	}
	if problems := Validate(adminSet, 99); len(problems) == 0 {
		t.Error("Validate(admin, 99) found no problems")
	}
	if problems := Validate(NewSet(CapabilitySendMessages), 0); len(problems) == 0 {
		t.Error("sendMessages without viewChannels passed validation")
	}
	if problems := Validate(NewSet(CapabilityKickMembers, CapabilityViewChannels), 40); len(problems) == 0 {
		t.Error("kickMembers at level 40 passed validation")
	}
}

func intPointer(value int) *int { return &value }
