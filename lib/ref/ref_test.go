// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package ref

import (
	"encoding/json"
	"testing"
)

func TestParseUserID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantError bool
		localpart string
		server    string
	}{
		{name: "valid", raw: "@alice:chaperone.chat", localpart: "alice", server: "chaperone.chat"},
		{name: "valid with port", raw: "@bob:localhost:8448", localpart: "bob", server: "localhost:8448"},
		{name: "empty", raw: "", wantError: true},
		{name: "missing sigil", raw: "alice:chaperone.chat", wantError: true},
		{name: "missing server", raw: "@alice", wantError: true},
		{name: "empty localpart", raw: "@:chaperone.chat", wantError: true},
		{name: "empty server", raw: "@alice:", wantError: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			userID, err := ParseUserID(test.raw)
			if test.wantError {
				if err == nil {
					t.Fatalf("ParseUserID(%q) succeeded, want error", test.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseUserID(%q) failed: %v", test.raw, err)
			}
			if userID.String() != test.raw {
				t.Errorf("String() = %q, want %q", userID.String(), test.raw)
			}
			if userID.Localpart() != test.localpart {
				t.Errorf("Localpart() = %q, want %q", userID.Localpart(), test.localpart)
			}
			if userID.Server() != test.server {
				t.Errorf("Server() = %q, want %q", userID.Server(), test.server)
			}
		})
	}
}

func TestParseRoomID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantError bool
	}{
		{name: "valid", raw: "!abc123:chaperone.chat"},
		{name: "empty", raw: "", wantError: true},
		{name: "wrong sigil", raw: "#general:chaperone.chat", wantError: true},
		{name: "missing server", raw: "!abc123", wantError: true},
		{name: "empty local part", raw: "!:chaperone.chat", wantError: true},
		{name: "empty server", raw: "!abc123:", wantError: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			roomID, err := ParseRoomID(test.raw)
			if test.wantError {
				if err == nil {
					t.Fatalf("ParseRoomID(%q) succeeded, want error", test.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRoomID(%q) failed: %v", test.raw, err)
			}
			if roomID.String() != test.raw {
				t.Errorf("String() = %q, want %q", roomID.String(), test.raw)
			}
		})
	}
}

func TestParseEventID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		raw       string
		wantError bool
	}{
		{name: "room v4 format", raw: "$Rqnc-F-dvnEYJTyHq_iKxU2bZ1CI92-kuZq3a5lr5Zg"},
		{name: "legacy format", raw: "$143273582443PhrSn:chaperone.chat"},
		{name: "empty", raw: "", wantError: true},
		{name: "missing sigil", raw: "abc123", wantError: true},
		{name: "bare sigil", raw: "$", wantError: true},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			eventID, err := ParseEventID(test.raw)
			if test.wantError {
				if err == nil {
					t.Fatalf("ParseEventID(%q) succeeded, want error", test.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEventID(%q) failed: %v", test.raw, err)
			}
			if eventID.String() != test.raw {
				t.Errorf("String() = %q, want %q", eventID.String(), test.raw)
			}
		})
	}
}

func TestUserIDJSONRoundTrip(t *testing.T) {
	t.Parallel()

	original := MustParseUserID("@mod:chaperone.chat")
	encoded, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(encoded) != `"@mod:chaperone.chat"` {
		t.Errorf("Marshal = %s, want %q", encoded, `"@mod:chaperone.chat"`)
	}

	var decoded UserID
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if decoded != original {
		t.Errorf("round trip = %v, want %v", decoded, original)
	}
}

func TestUnmarshalEmptyProducesZero(t *testing.T) {
	t.Parallel()

	var eventID EventID
	if err := eventID.UnmarshalText(nil); err != nil {
		t.Fatalf("UnmarshalText(nil) failed: %v", err)
	}
	if !eventID.IsZero() {
		t.Errorf("expected zero EventID, got %v", eventID)
	}

	var roomID RoomID
	if err := roomID.UnmarshalText([]byte{}); err != nil {
		t.Fatalf("UnmarshalText(empty) failed: %v", err)
	}
	if !roomID.IsZero() {
		t.Errorf("expected zero RoomID, got %v", roomID)
	}
}

func TestUnmarshalInvalidRejected(t *testing.T) {
	t.Parallel()

	var userID UserID
	if err := json.Unmarshal([]byte(`"not-a-user-id"`), &userID); err == nil {
		t.Error("Unmarshal of invalid user ID succeeded, want error")
	}
}
