// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// newTestSession creates a Client and DirectSession pointing at a test server.
func newTestSession(t *testing.T, handler http.Handler) (*Client, *DirectSession) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{HomeserverURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	session, err := client.SessionFromToken(ref.MustParseUserID("@test:local"), "test-token")
	if err != nil {
		t.Fatalf("SessionFromToken failed: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return client, session
}

func assertAuth(t *testing.T, request *http.Request, token string) {
	t.Helper()
	if got := request.Header.Get("Authorization"); got != "Bearer "+token {
		t.Errorf("Authorization header = %q, want %q", got, "Bearer "+token)
	}
}

func writeJSON(writer http.ResponseWriter, value any) {
	writer.Header().Set("Content-Type", "application/json")
	json.NewEncoder(writer).Encode(value)
}

func writeMatrixError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	json.NewEncoder(writer).Encode(map[string]string{"errcode": code, "error": message})
}

func TestWhoAmI(t *testing.T) {
	_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, "test-token")
		if request.URL.Path != "/_matrix/client/v3/account/whoami" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writeJSON(writer, WhoAmIResponse{UserID: ref.MustParseUserID("@test:local"), DeviceID: "DEV1"})
	}))

	userID, err := session.WhoAmI(context.Background())
	if err != nil {
		t.Fatalf("WhoAmI failed: %v", err)
	}
	if userID.String() != "@test:local" {
		t.Errorf("unexpected user ID: %s", userID)
	}
}

func TestKickUser(t *testing.T) {
	roomID := ref.MustParseRoomID("!room1:local")

	t.Run("success", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assertAuth(t, request, "test-token")
			if request.URL.Path != "/_matrix/client/v3/rooms/!room1:local/kick" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			var body MembershipRequest
			if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			if body.UserID.String() != "@spammer:local" {
				t.Errorf("unexpected user: %s", body.UserID)
			}
			if body.Reason != "spam" {
				t.Errorf("unexpected reason: %s", body.Reason)
			}
			writeJSON(writer, map[string]any{})
		}))

		err := session.KickUser(context.Background(), roomID, ref.MustParseUserID("@spammer:local"), "spam")
		if err != nil {
			t.Fatalf("KickUser failed: %v", err)
		}
	})

	t.Run("forbidden surfaces MatrixError", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeMatrixError(writer, http.StatusForbidden, ErrCodeForbidden, "you cannot kick this user")
		}))

		err := session.KickUser(context.Background(), roomID, ref.MustParseUserID("@admin:local"), "")
		if !IsMatrixError(err, ErrCodeForbidden) {
			t.Errorf("expected M_FORBIDDEN, got %v", err)
		}
		var matrixErr *MatrixError
		if !errors.As(err, &matrixErr) || matrixErr.StatusCode != http.StatusForbidden {
			t.Errorf("expected status 403 in error, got %v", err)
		}
	})
}

func TestBanUnbanUser(t *testing.T) {
	roomID := ref.MustParseRoomID("!room1:local")
	target := ref.MustParseUserID("@troll:local")

	var calls []string
	_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assertAuth(t, request, "test-token")
		calls = append(calls, request.URL.Path)
		writeJSON(writer, map[string]any{})
	}))

	if err := session.BanUser(context.Background(), roomID, target, "harassment"); err != nil {
		t.Fatalf("BanUser failed: %v", err)
	}
	if err := session.UnbanUser(context.Background(), roomID, target); err != nil {
		t.Fatalf("UnbanUser failed: %v", err)
	}

	want := []string{
		"/_matrix/client/v3/rooms/!room1:local/ban",
		"/_matrix/client/v3/rooms/!room1:local/unban",
	}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for index := range want {
		if calls[index] != want[index] {
			t.Errorf("call %d = %q, want %q", index, calls[index], want[index])
		}
	}
}

func TestRedactEvent(t *testing.T) {
	_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", request.Method)
		}
		// Path carries a per-send transaction ID suffix.
		const prefix = "/_matrix/client/v3/rooms/!room1:local/redact/$deadbeef/"
		if len(request.URL.Path) <= len(prefix) || request.URL.Path[:len(prefix)] != prefix {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		var body RedactRequest
		if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if body.Reason != "off topic" {
			t.Errorf("unexpected reason: %s", body.Reason)
		}
		writeJSON(writer, SendEventResponse{EventID: ref.MustParseEventID("$redaction")})
	}))

	redactionID, err := session.RedactEvent(context.Background(),
		ref.MustParseRoomID("!room1:local"), ref.MustParseEventID("$deadbeef"), "off topic")
	if err != nil {
		t.Fatalf("RedactEvent failed: %v", err)
	}
	if redactionID.String() != "$redaction" {
		t.Errorf("unexpected redaction event ID: %s", redactionID)
	}
}

func TestGetEvent(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.URL.Path != "/_matrix/client/v3/rooms/!room1:local/event/$msg1" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			writeJSON(writer, map[string]any{
				"type":     "m.room.message",
				"sender":   "@alice:local",
				"event_id": "$msg1",
				"content":  map[string]any{"msgtype": "m.text", "body": "hello"},
			})
		}))

		event, err := session.GetEvent(context.Background(),
			ref.MustParseRoomID("!room1:local"), ref.MustParseEventID("$msg1"))
		if err != nil {
			t.Fatalf("GetEvent failed: %v", err)
		}
		if event.Sender.String() != "@alice:local" {
			t.Errorf("unexpected sender: %s", event.Sender)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writeMatrixError(writer, http.StatusNotFound, ErrCodeNotFound, "event not found")
		}))

		_, err := session.GetEvent(context.Background(),
			ref.MustParseRoomID("!room1:local"), ref.MustParseEventID("$gone"))
		if !IsMatrixError(err, ErrCodeNotFound) {
			t.Errorf("expected M_NOT_FOUND, got %v", err)
		}
	})
}

func TestSendStateEvent(t *testing.T) {
	_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPut {
			t.Errorf("unexpected method: %s", request.Method)
		}
		if request.URL.Path != "/_matrix/client/v3/rooms/!room1:local/state/chat.chaperone.moderation.ban/@troll:local" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		writeJSON(writer, SendEventResponse{EventID: ref.MustParseEventID("$state1")})
	}))

	eventID, err := session.SendStateEvent(context.Background(),
		ref.MustParseRoomID("!room1:local"),
		"chat.chaperone.moderation.ban", "@troll:local",
		map[string]any{"reason": "spam"})
	if err != nil {
		t.Fatalf("SendStateEvent failed: %v", err)
	}
	if eventID.String() != "$state1" {
		t.Errorf("unexpected event ID: %s", eventID)
	}
}

func TestRoomAccountDataRoundTrip(t *testing.T) {
	stored := map[string]json.RawMessage{}
	_, session := newTestSession(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		const path = "/_matrix/client/v3/user/@test:local/rooms/!room1:local/account_data/chat.chaperone.channel_permissions"
		if request.URL.Path != path {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		switch request.Method {
		case http.MethodPut:
			var content json.RawMessage
			if err := json.NewDecoder(request.Body).Decode(&content); err != nil {
				t.Fatalf("failed to decode request: %v", err)
			}
			stored[request.URL.Path] = content
			writeJSON(writer, map[string]any{})
		case http.MethodGet:
			content, ok := stored[request.URL.Path]
			if !ok {
				writeMatrixError(writer, http.StatusNotFound, ErrCodeNotFound, "no account data")
				return
			}
			writer.Header().Set("Content-Type", "application/json")
			writer.Write(content)
		}
	}))

	roomID := ref.MustParseRoomID("!room1:local")
	dataType := ref.EventType("chat.chaperone.channel_permissions")

	// Never written: M_NOT_FOUND.
	if _, err := session.GetRoomAccountData(context.Background(), roomID, dataType); !IsMatrixError(err, ErrCodeNotFound) {
		t.Errorf("expected M_NOT_FOUND before first write, got %v", err)
	}

	if err := session.SetRoomAccountData(context.Background(), roomID, dataType, map[string]int{"version": 1}); err != nil {
		t.Fatalf("SetRoomAccountData failed: %v", err)
	}

	raw, err := session.GetRoomAccountData(context.Background(), roomID, dataType)
	if err != nil {
		t.Fatalf("GetRoomAccountData failed: %v", err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed to decode account data: %v", err)
	}
	if decoded["version"] != 1 {
		t.Errorf("version = %d, want 1", decoded["version"])
	}
}
