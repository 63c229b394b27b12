// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
)

// nextLogID generates a unique state key for an audit entry. Format:
// "<timestamp_ms>-<counter>" to ensure uniqueness across restarts; each
// entry gets its own state event and is never overwritten.
func (moderator *Moderator) nextLogID(timestamp int64) string {
	return fmt.Sprintf("%d-%d", timestamp, moderator.logCounter.Add(1))
}

// appendLog records an executed action as a new log state event. Best
// effort: the action itself has already committed remotely, so a log
// write failure is reported in the process log but never fails the
// action.
func (moderator *Moderator) appendLog(ctx context.Context, roomID ref.RoomID, entry schema.ModerationLogEntry) {
	logID := moderator.nextLogID(entry.Timestamp)
	_, err := moderator.session.SendStateEvent(ctx, roomID, moderator.namespace.ModerationLogType(), logID, entry)
	if err != nil {
		moderator.logger.Warn("moderation log write failed",
			"room_id", roomID, "log_id", logID, "error", err)
	}
}

// QueryLog returns the room's audit entries sorted newest-first,
// truncated to limit. A limit of zero or less returns everything.
func (moderator *Moderator) QueryLog(ctx context.Context, roomID ref.RoomID, limit int) ([]schema.ModerationLogEntry, error) {
	events, err := moderator.session.GetRoomState(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("reading moderation log for %s: %w", roomID, err)
	}

	logType := moderator.namespace.ModerationLogType()
	var entries []schema.ModerationLogEntry
	for _, event := range events {
		if event.Type != logType {
			continue
		}
		var entry schema.ModerationLogEntry
		if err := json.Unmarshal(event.Content, &entry); err != nil {
			moderator.logger.Warn("malformed moderation log entry",
				"room_id", roomID, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp > entries[j].Timestamp
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
