// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// Session is the interface the moderation core consumes. It covers the
// state primitives (power levels, moderation records, channel
// permission documents), the membership moderation endpoints, and event
// lookup/redaction — nothing else.
//
// *DirectSession is the production implementation. Tests substitute an
// httptest-backed DirectSession or a scripted fake; the moderation
// packages never depend on the concrete type.
//
// Operator-only methods (DeviceID, SendMessage, RoomMessages,
// GetRoomMembers) are not part of this interface. Code that needs them
// should type-assert to *DirectSession.
type Session interface {
	// UserID returns the fully-qualified Matrix user ID of the
	// session's account.
	UserID() ref.UserID

	// Close releases any resources held by the session. Idempotent.
	Close() error

	// GetStateEvent fetches a specific state event's content from a
	// room. Returns the raw JSON content for the caller to unmarshal.
	GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error)

	// SendStateEvent sends a state event to a room. Returns the event ID.
	SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string, content any) (ref.EventID, error)

	// GetRoomState fetches all current state events from a room.
	GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error)

	// GetEvent fetches a single event from a room by event ID.
	GetEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID) (*Event, error)

	// KickUser removes a user from a room.
	KickUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID, reason string) error

	// BanUser bans a user from a room.
	BanUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID, reason string) error

	// UnbanUser lifts a ban.
	UnbanUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error

	// RedactEvent strips an event of its content. Returns the
	// redaction event's ID.
	RedactEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, reason string) (ref.EventID, error)

	// GetRoomAccountData fetches a per-room account data blob.
	GetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType) (json.RawMessage, error)

	// SetRoomAccountData writes a per-room account data blob
	// (whole-document replace).
	SetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType, content any) error
}

// Compile-time check: *DirectSession implements Session.
var _ Session = (*DirectSession)(nil)
