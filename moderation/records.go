// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package moderation

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
	"github.com/chaperone-chat/chaperone/messaging"
)

// Sanction records are namespaced state events keyed by the target
// user. Matrix state cannot be deleted, so "clearing" a record writes
// an inactive zero-value body over it; readers treat inactive records
// as absent.

func (moderator *Moderator) banRecord(ctx context.Context, roomID ref.RoomID, target ref.UserID) (*schema.BanRecord, error) {
	content, err := moderator.session.GetStateEvent(ctx, roomID, moderator.namespace.BanRecordType(), target.String())
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading ban record for %s: %w", target, err)
	}

	var record schema.BanRecord
	if err := json.Unmarshal(content, &record); err != nil {
		return nil, fmt.Errorf("parsing ban record for %s: %w", target, err)
	}
	if !record.Active {
		return nil, nil
	}
	return &record, nil
}

func (moderator *Moderator) writeBanRecord(ctx context.Context, roomID ref.RoomID, target ref.UserID, record schema.BanRecord) error {
	_, err := moderator.session.SendStateEvent(ctx, roomID, moderator.namespace.BanRecordType(), target.String(), record)
	return err
}

func (moderator *Moderator) clearBanRecord(ctx context.Context, roomID ref.RoomID, target ref.UserID) error {
	_, err := moderator.session.SendStateEvent(ctx, roomID, moderator.namespace.BanRecordType(), target.String(), schema.BanRecord{})
	return err
}

func (moderator *Moderator) muteRecord(ctx context.Context, roomID ref.RoomID, target ref.UserID) (*schema.MuteRecord, error) {
	content, err := moderator.session.GetStateEvent(ctx, roomID, moderator.namespace.MuteRecordType(), target.String())
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading mute record for %s: %w", target, err)
	}

	var record schema.MuteRecord
	if err := json.Unmarshal(content, &record); err != nil {
		return nil, fmt.Errorf("parsing mute record for %s: %w", target, err)
	}
	if !record.Active {
		return nil, nil
	}
	return &record, nil
}

func (moderator *Moderator) writeMuteRecord(ctx context.Context, roomID ref.RoomID, target ref.UserID, record schema.MuteRecord) error {
	_, err := moderator.session.SendStateEvent(ctx, roomID, moderator.namespace.MuteRecordType(), target.String(), record)
	return err
}

func (moderator *Moderator) clearMuteRecord(ctx context.Context, roomID ref.RoomID, target ref.UserID) error {
	_, err := moderator.session.SendStateEvent(ctx, roomID, moderator.namespace.MuteRecordType(), target.String(), schema.MuteRecord{})
	return err
}

// activeBanRecords scans the room's full state for active ban records,
// keyed by target user. Used by the expiry sweeper.
func (moderator *Moderator) activeBanRecords(ctx context.Context, roomID ref.RoomID) (map[ref.UserID]schema.BanRecord, error) {
	state, err := moderator.session.GetRoomState(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("reading room state for %s: %w", roomID, err)
	}

	records := make(map[ref.UserID]schema.BanRecord)
	for _, event := range state {
		if event.Type != moderator.namespace.BanRecordType() || event.StateKey == nil {
			continue
		}
		target, err := ref.ParseUserID(*event.StateKey)
		if err != nil {
			moderator.logger.Warn("ban record with malformed state key",
				"room_id", roomID, "state_key", *event.StateKey)
			continue
		}
		var record schema.BanRecord
		if err := json.Unmarshal(event.Content, &record); err != nil {
			moderator.logger.Warn("unparseable ban record",
				"room_id", roomID, "target", target, "error", err)
			continue
		}
		if record.Active {
			records[target] = record
		}
	}
	return records, nil
}

// activeMuteRecords scans the room's full state for active mute
// records, keyed by target user.
func (moderator *Moderator) activeMuteRecords(ctx context.Context, roomID ref.RoomID) (map[ref.UserID]schema.MuteRecord, error) {
	state, err := moderator.session.GetRoomState(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("reading room state for %s: %w", roomID, err)
	}

	records := make(map[ref.UserID]schema.MuteRecord)
	for _, event := range state {
		if event.Type != moderator.namespace.MuteRecordType() || event.StateKey == nil {
			continue
		}
		target, err := ref.ParseUserID(*event.StateKey)
		if err != nil {
			moderator.logger.Warn("mute record with malformed state key",
				"room_id", roomID, "state_key", *event.StateKey)
			continue
		}
		var record schema.MuteRecord
		if err := json.Unmarshal(event.Content, &record); err != nil {
			moderator.logger.Warn("unparseable mute record",
				"room_id", roomID, "target", target, "error", err)
			continue
		}
		if record.Active {
			records[target] = record
		}
	}
	return records, nil
}
