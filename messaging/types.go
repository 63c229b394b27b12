// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"encoding/json"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// AuthResponse is returned by Login.
type AuthResponse struct {
	UserID      ref.UserID `json:"user_id"`
	AccessToken string     `json:"access_token"`
	DeviceID    string     `json:"device_id"`
}

// LoginRequest is the body of POST /login for password authentication.
type LoginRequest struct {
	Type                     string `json:"type"`
	User                     string `json:"user"`
	Password                 string `json:"password"`
	InitialDeviceDisplayName string `json:"initial_device_display_name,omitempty"`
}

// WhoAmIResponse is returned by GET /account/whoami.
type WhoAmIResponse struct {
	UserID   ref.UserID `json:"user_id"`
	DeviceID string     `json:"device_id"`
}

// ServerVersionsResponse is returned by GET /versions.
type ServerVersionsResponse struct {
	Versions         []string        `json:"versions"`
	UnstableFeatures map[string]bool `json:"unstable_features"`
}

// SendEventResponse is returned by event and state event sends.
type SendEventResponse struct {
	EventID ref.EventID `json:"event_id"`
}

// Event is a Matrix event as returned by room state, event lookup, and
// message pagination endpoints. Content is left raw for the caller to
// unmarshal into the appropriate typed content.
type Event struct {
	Type           ref.EventType   `json:"type"`
	StateKey       *string         `json:"state_key,omitempty"`
	Sender         ref.UserID      `json:"sender"`
	EventID        ref.EventID     `json:"event_id"`
	RoomID         ref.RoomID      `json:"room_id,omitempty"`
	OriginServerTS int64           `json:"origin_server_ts"`
	Content        json.RawMessage `json:"content"`
}

// MessageContent is the content body of a Matrix message event
// (m.room.message).
type MessageContent struct {
	MsgType string `json:"msgtype"`
	Body    string `json:"body"`
}

// NewTextMessage creates a plain text message.
func NewTextMessage(body string) MessageContent {
	return MessageContent{
		MsgType: "m.text",
		Body:    body,
	}
}

// MembershipRequest is the body of the kick, ban, and unban endpoints.
// Reason is omitted when empty; the unban endpoint ignores it.
type MembershipRequest struct {
	UserID ref.UserID `json:"user_id"`
	Reason string     `json:"reason,omitempty"`
}

// RedactRequest is the body of the redaction endpoint.
type RedactRequest struct {
	Reason string `json:"reason,omitempty"`
}

// RoomMember describes a member of a room.
type RoomMember struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Membership  string `json:"membership"`
	AvatarURL   string `json:"avatar_url"`
}

// RoomMembersResponse is the raw response of GET /rooms/{roomId}/members.
type RoomMembersResponse struct {
	Chunk []struct {
		StateKey string `json:"state_key"`
		Content  struct {
			DisplayName string `json:"displayname"`
			Membership  string `json:"membership"`
			AvatarURL   string `json:"avatar_url"`
		} `json:"content"`
	} `json:"chunk"`
}

// RoomMessagesOptions controls message pagination.
type RoomMessagesOptions struct {
	// From is the pagination token to continue from. Empty starts at
	// the most recent events.
	From string
	// Direction is "b" (backward, newest first) or "f" (forward).
	// Defaults to "b".
	Direction string
	// Limit caps the number of events returned. 0 uses the server default.
	Limit int
}

// RoomMessagesResponse is returned by GET /rooms/{roomId}/messages.
type RoomMessagesResponse struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Chunk []Event `json:"chunk"`
}
