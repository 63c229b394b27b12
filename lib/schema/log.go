// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// ModerationAction identifies the kind of sanction a log entry records.
type ModerationAction string

const (
	ActionKick          ModerationAction = "kick"
	ActionBan           ModerationAction = "ban"
	ActionUnban         ModerationAction = "unban"
	ActionMute          ModerationAction = "mute"
	ActionUnmute        ModerationAction = "unmute"
	ActionDeleteMessage ModerationAction = "delete_message"
)

// ModerationLogEntry is one audit record, stored as its own
// chat.chaperone.moderation.log state event keyed by a unique log ID.
// Entries are written once and never mutated or deleted. Entries for
// automatic expiry lifts carry the sweeper's identity as the actor and
// Automatic set.
type ModerationLogEntry struct {
	Action     ModerationAction `json:"action"`
	ActorID    ref.UserID       `json:"actor_id"`
	TargetID   ref.UserID       `json:"target_id,omitempty"`
	EventID    ref.EventID      `json:"event_id,omitempty"`
	Reason     string           `json:"reason,omitempty"`
	DurationMs int64            `json:"duration_ms,omitempty"`
	Automatic  bool             `json:"automatic,omitempty"`
	Timestamp  int64            `json:"timestamp"`
}

// NewLogEntry builds a log entry timestamped at now.
func NewLogEntry(action ModerationAction, actorID ref.UserID, targetID ref.UserID, reason string, now time.Time) ModerationLogEntry {
	return ModerationLogEntry{
		Action:    action,
		ActorID:   actorID,
		TargetID:  targetID,
		Reason:    reason,
		Timestamp: now.UnixMilli(),
	}
}
