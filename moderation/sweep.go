// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package moderation

import (
	"context"
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// SweepError records one target the sweep could not reverse.
type SweepError struct {
	UserID ref.UserID `json:"user_id"`
	Error  string     `json:"error"`
}

// SweepResult aggregates one expiry pass over a room. CheckedCount is
// the number of active records examined; RevertedCount is how many
// expired sanctions were lifted. Per-target failures accumulate in
// Errors without stopping the scan.
type SweepResult struct {
	CheckedCount  int          `json:"checked_count"`
	RevertedCount int          `json:"reverted_count"`
	Errors        []SweepError `json:"errors,omitempty"`
}

// CheckExpiredBans scans the room's ban records and unbans every target
// whose expiry has passed. The unban runs as the session user without
// the actor-versus-target rank check: expiry is administrative. The
// sweep is best effort — an expired ban may stay visibly active until
// the next pass.
func (moderator *Moderator) CheckExpiredBans(ctx context.Context, roomID ref.RoomID) (SweepResult, error) {
	records, err := moderator.activeBanRecords(ctx, roomID)
	if err != nil {
		return SweepResult{}, err
	}

	now := moderator.clock.Now()
	result := SweepResult{CheckedCount: len(records)}
	for target, record := range records {
		if !record.Expired(now) {
			continue
		}
		lifted := moderator.liftBan(ctx, roomID, moderator.session.UserID(), target, true)
		if !lifted.Success {
			result.Errors = append(result.Errors, SweepError{UserID: target, Error: lifted.Reason})
			continue
		}
		result.RevertedCount++
	}

	moderator.logger.Info("ban expiry sweep complete",
		"room_id", roomID, "checked", result.CheckedCount,
		"unbanned", result.RevertedCount, "errors", len(result.Errors))
	return result, nil
}

// CheckExpiredMutes scans the room's mute records and unmutes every
// target whose expiry has passed, restoring each to their recorded
// pre-mute level.
func (moderator *Moderator) CheckExpiredMutes(ctx context.Context, roomID ref.RoomID) (SweepResult, error) {
	records, err := moderator.activeMuteRecords(ctx, roomID)
	if err != nil {
		return SweepResult{}, err
	}

	now := moderator.clock.Now()
	result := SweepResult{CheckedCount: len(records)}
	for target, record := range records {
		if !record.Expired(now) {
			continue
		}
		powerLevels, err := moderator.powerLevels(ctx, roomID)
		if err != nil {
			result.Errors = append(result.Errors, SweepError{UserID: target, Error: err.Error()})
			continue
		}
		lifted := moderator.liftMute(ctx, roomID, moderator.session.UserID(), target, powerLevels, true)
		if !lifted.Success {
			result.Errors = append(result.Errors, SweepError{UserID: target, Error: lifted.Reason})
			continue
		}
		result.RevertedCount++
	}

	moderator.logger.Info("mute expiry sweep complete",
		"room_id", roomID, "checked", result.CheckedCount,
		"unmuted", result.RevertedCount, "errors", len(result.Errors))
	return result, nil
}

// Sweeper runs the expiry sweep over a set of rooms on an interval.
type Sweeper struct {
	moderator *Moderator
	rooms     []ref.RoomID
	interval  time.Duration
}

// NewSweeper returns a Sweeper covering the given rooms. Interval must
// be positive.
func NewSweeper(moderator *Moderator, rooms []ref.RoomID, interval time.Duration) *Sweeper {
	return &Sweeper{moderator: moderator, rooms: rooms, interval: interval}
}

// SweepOnce makes a single pass over every room, bans then mutes.
// Per-room failures are logged and do not stop the pass.
func (sweeper *Sweeper) SweepOnce(ctx context.Context) {
	for _, roomID := range sweeper.rooms {
		if _, err := sweeper.moderator.CheckExpiredBans(ctx, roomID); err != nil {
			sweeper.moderator.logger.Warn("ban sweep failed", "room_id", roomID, "error", err)
		}
		if _, err := sweeper.moderator.CheckExpiredMutes(ctx, roomID); err != nil {
			sweeper.moderator.logger.Warn("mute sweep failed", "room_id", roomID, "error", err)
		}
	}
}

// Run sweeps on the configured interval until the context is canceled.
// The first sweep happens after one interval, not immediately; call
// SweepOnce first if an immediate pass is wanted.
func (sweeper *Sweeper) Run(ctx context.Context) {
	ticker := sweeper.moderator.clock.NewTicker(sweeper.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweeper.SweepOnce(ctx)
		}
	}
}
