// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

func TestUserLevel(t *testing.T) {
	t.Parallel()

	alice := ref.MustParseUserID("@alice:example.org")
	bob := ref.MustParseUserID("@bob:example.org")

	tests := []struct {
		name        string
		powerLevels PowerLevels
		userID      ref.UserID
		want        int
	}{
		{
			name: "explicit entry",
			powerLevels: PowerLevels{
				Users: map[string]int{"@alice:example.org": 100},
			},
			userID: alice,
			want:   100,
		},
		{
			name: "falls back to users_default",
			powerLevels: PowerLevels{
				Users:        map[string]int{"@alice:example.org": 100},
				UsersDefault: intPointer(10),
			},
			userID: bob,
			want:   10,
		},
		{
			name:        "protocol default when nothing set",
			powerLevels: PowerLevels{},
			userID:      bob,
			want:        0,
		},
		{
			name: "explicit zero beats users_default",
			powerLevels: PowerLevels{
				Users:        map[string]int{"@alice:example.org": 0},
				UsersDefault: intPointer(25),
			},
			userID: alice,
			want:   0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			got := test.powerLevels.UserLevel(test.userID)
			if got != test.want {
				t.Errorf("UserLevel(%s) = %d, want %d", test.userID, got, test.want)
			}
		})
	}
}

func TestThresholdDefaults(t *testing.T) {
	t.Parallel()

	var empty PowerLevels
	checks := []struct {
		name string
		got  int
		want int
	}{
		{"ban", empty.BanLevel(), 50},
		{"kick", empty.KickLevel(), 50},
		{"redact", empty.RedactLevel(), 50},
		{"invite", empty.InviteLevel(), 25},
		{"events_default", empty.EventsDefaultLevel(), 0},
		{"state_default", empty.StateDefaultLevel(), 50},
	}
	for _, check := range checks {
		if check.got != check.want {
			t.Errorf("%s default = %d, want %d", check.name, check.got, check.want)
		}
	}

	explicit := PowerLevels{Ban: intPointer(75), Invite: intPointer(0)}
	if explicit.BanLevel() != 75 {
		t.Errorf("BanLevel() = %d, want 75", explicit.BanLevel())
	}
	if explicit.InviteLevel() != 0 {
		t.Errorf("InviteLevel() = %d, want 0", explicit.InviteLevel())
	}
}

func TestEventLevel(t *testing.T) {
	t.Parallel()

	powerLevels := PowerLevels{
		Events: map[string]int{
			"m.room.message": 10,
		},
		EventsDefault: intPointer(5),
	}

	if got := powerLevels.EventLevel(MatrixEventTypeMessage, false); got != 10 {
		t.Errorf("explicit event level = %d, want 10", got)
	}
	if got := powerLevels.EventLevel("m.room.topic", false); got != 5 {
		t.Errorf("events_default fallback = %d, want 5", got)
	}
	if got := powerLevels.EventLevel("m.room.name", true); got != 50 {
		t.Errorf("state_default fallback = %d, want 50", got)
	}
}

func TestPowerLevelsRoundTrip(t *testing.T) {
	t.Parallel()

	// Unset fields must stay absent, and explicit zero must survive.
	original := PowerLevels{
		Users:        map[string]int{"@alice:example.org": 100},
		UsersDefault: intPointer(0),
	}

	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &generic); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if _, present := generic["ban"]; present {
		t.Error("unset ban field was serialized")
	}
	if _, present := generic["users_default"]; !present {
		t.Error("explicit users_default of 0 was dropped")
	}

	var decoded PowerLevels
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.UsersDefault == nil || *decoded.UsersDefault != 0 {
		t.Errorf("users_default = %v, want pointer to 0", decoded.UsersDefault)
	}
	if decoded.Ban != nil {
		t.Errorf("ban = %v, want nil", decoded.Ban)
	}
}

// fakeStateSession records state event traffic for read-modify-write tests.
type fakeStateSession struct {
	state map[string]json.RawMessage
	sends []sentState
}

type sentState struct {
	eventType ref.EventType
	stateKey  string
	content   json.RawMessage
}

func (session *fakeStateSession) GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error) {
	return session.state[string(eventType)+"/"+stateKey], nil
}

func (session *fakeStateSession) SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string, content any) (ref.EventID, error) {
	encoded, err := json.Marshal(content)
	if err != nil {
		return ref.EventID{}, err
	}
	if session.state == nil {
		session.state = make(map[string]json.RawMessage)
	}
	session.state[string(eventType)+"/"+stateKey] = encoded
	session.sends = append(session.sends, sentState{eventType, stateKey, encoded})
	return ref.MustParseEventID("$sent:example.org"), nil
}

func TestGrantPowerLevels(t *testing.T) {
	t.Parallel()

	session := &fakeStateSession{
		state: map[string]json.RawMessage{
			"m.room.power_levels/": json.RawMessage(
				`{"users":{"@admin:example.org":100},"ban":50}`),
		},
	}

	roomID := ref.MustParseRoomID("!room:example.org")
	err := GrantPowerLevels(context.Background(), session, roomID, PowerLevelGrants{
		Users: map[ref.UserID]int{
			ref.MustParseUserID("@mod:example.org"): 50,
		},
		Events: map[ref.EventType]int{
			"m.room.topic": 25,
		},
	})
	if err != nil {
		t.Fatalf("GrantPowerLevels: %v", err)
	}

	if len(session.sends) != 1 {
		t.Fatalf("sent %d state events, want 1", len(session.sends))
	}

	var result PowerLevels
	if err := json.Unmarshal(session.sends[0].content, &result); err != nil {
		t.Fatalf("parsing sent power levels: %v", err)
	}
	if result.Users["@admin:example.org"] != 100 {
		t.Error("existing admin level was not preserved")
	}
	if result.Users["@mod:example.org"] != 50 {
		t.Error("granted user level missing")
	}
	if result.Events["m.room.topic"] != 25 {
		t.Error("granted event level missing")
	}
	if result.Ban == nil || *result.Ban != 50 {
		t.Error("existing ban threshold was not preserved")
	}
}

func TestSetUserPowerLevel(t *testing.T) {
	t.Parallel()

	session := &fakeStateSession{
		state: map[string]json.RawMessage{
			"m.room.power_levels/": json.RawMessage(`{"users_default":0}`),
		},
	}

	roomID := ref.MustParseRoomID("!room:example.org")
	target := ref.MustParseUserID("@noisy:example.org")
	if err := SetUserPowerLevel(context.Background(), session, roomID, target, -1); err != nil {
		t.Fatalf("SetUserPowerLevel: %v", err)
	}

	var result PowerLevels
	if err := json.Unmarshal(session.sends[0].content, &result); err != nil {
		t.Fatalf("parsing sent power levels: %v", err)
	}
	if result.UserLevel(target) != -1 {
		t.Errorf("target level = %d, want -1", result.UserLevel(target))
	}
}
