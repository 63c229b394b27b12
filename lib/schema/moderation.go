// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// BanRecord is the content of a chat.chaperone.moderation.ban state event,
// keyed by the banned user's Matrix ID. It carries the sanction metadata
// the homeserver's own ban state does not: who imposed it, why, and when
// it lapses. A zero DurationMs means the ban is permanent and ExpiresAt
// is omitted.
type BanRecord struct {
	Active     bool       `json:"active"`
	ActorID    ref.UserID `json:"actor_id"`
	Reason     string     `json:"reason,omitempty"`
	CreatedAt  int64      `json:"created_at"`
	DurationMs int64      `json:"duration_ms,omitempty"`
	ExpiresAt  *int64     `json:"expires_at,omitempty"`
}

// MuteRecord is the content of a chat.chaperone.moderation.mute state
// event, keyed by the muted user's Matrix ID. OriginalPowerLevel is the
// level the user held before the mute, so unmute can restore it exactly.
type MuteRecord struct {
	Active             bool       `json:"active"`
	ActorID            ref.UserID `json:"actor_id"`
	Reason             string     `json:"reason,omitempty"`
	CreatedAt          int64      `json:"created_at"`
	DurationMs         int64      `json:"duration_ms,omitempty"`
	ExpiresAt          *int64     `json:"expires_at,omitempty"`
	OriginalPowerLevel int        `json:"original_power_level"`
}

// NewBanRecord builds an active ban record timestamped at now. A positive
// duration sets ExpiresAt to createdAt + duration; zero or negative means
// permanent.
func NewBanRecord(actorID ref.UserID, reason string, now time.Time, duration time.Duration) BanRecord {
	record := BanRecord{
		Active:    true,
		ActorID:   actorID,
		Reason:    reason,
		CreatedAt: now.UnixMilli(),
	}
	if duration > 0 {
		record.DurationMs = duration.Milliseconds()
		expiresAt := record.CreatedAt + record.DurationMs
		record.ExpiresAt = &expiresAt
	}
	return record
}

// NewMuteRecord builds an active mute record timestamped at now,
// remembering the power level the target held before the mute.
func NewMuteRecord(actorID ref.UserID, reason string, now time.Time, duration time.Duration, originalPowerLevel int) MuteRecord {
	record := MuteRecord{
		Active:             true,
		ActorID:            actorID,
		Reason:             reason,
		CreatedAt:          now.UnixMilli(),
		OriginalPowerLevel: originalPowerLevel,
	}
	if duration > 0 {
		record.DurationMs = duration.Milliseconds()
		expiresAt := record.CreatedAt + record.DurationMs
		record.ExpiresAt = &expiresAt
	}
	return record
}

// Expired reports whether the ban has lapsed as of now. Permanent bans
// and inactive records never expire.
func (record BanRecord) Expired(now time.Time) bool {
	if !record.Active || record.ExpiresAt == nil {
		return false
	}
	return now.UnixMilli() >= *record.ExpiresAt
}

// Expired reports whether the mute has lapsed as of now.
func (record MuteRecord) Expired(now time.Time) bool {
	if !record.Active || record.ExpiresAt == nil {
		return false
	}
	return now.UnixMilli() >= *record.ExpiresAt
}
