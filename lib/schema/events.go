// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import "github.com/chaperone-chat/chaperone/lib/ref"

// Standard Matrix event types referenced by Chaperone.
const (
	// MatrixEventTypePowerLevels is the standard power levels state
	// event — a single document per room, state key "".
	MatrixEventTypePowerLevels ref.EventType = "m.room.power_levels"

	// MatrixEventTypeMessage is the standard message timeline event.
	MatrixEventTypeMessage ref.EventType = "m.room.message"

	// MatrixEventTypeMember is the standard membership state event,
	// state key = the member's user ID.
	MatrixEventTypeMember ref.EventType = "m.room.member"
)

// DefaultNamespace is the event type prefix for Chaperone's custom
// state events and account data.
const DefaultNamespace Namespace = "chat.chaperone"

// Namespace is the reversed-domain prefix under which Chaperone
// persists its custom event types. Deployments that embed Chaperone
// into an existing product can substitute their own prefix; every
// store and sweeper derives its event types from the configured
// Namespace rather than hard-coding strings.
type Namespace string

// String returns the namespace prefix (e.g., "chat.chaperone").
func (n Namespace) String() string { return string(n) }

// MuteRecordType is the state event type for mute records.
// State key = the muted user's ID.
func (n Namespace) MuteRecordType() ref.EventType {
	return ref.EventType(string(n) + ".moderation.mute")
}

// BanRecordType is the state event type for timed ban records.
// State key = the banned user's ID.
func (n Namespace) BanRecordType() ref.EventType {
	return ref.EventType(string(n) + ".moderation.ban")
}

// ModerationLogType is the room account data type holding the
// append-only moderation log document.
func (n Namespace) ModerationLogType() ref.EventType {
	return ref.EventType(string(n) + ".moderation.log")
}

// ChannelPermissionsType is the room account data type holding the
// channel permission override record.
func (n Namespace) ChannelPermissionsType() ref.EventType {
	return ref.EventType(string(n) + ".channel_permissions")
}
