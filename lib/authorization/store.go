// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
	"github.com/chaperone-chat/chaperone/messaging"
)

// AccountDataSession is the subset of the Matrix client-server API
// needed to read and write channel permission records. Satisfied by
// messaging.Session.
type AccountDataSession interface {
	GetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType) (json.RawMessage, error)
	SetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType, content any) error
}

// GetChannelPermissions reads the channel permission record for a room.
// Returns nil (and no error) if the room has never had an override
// written: the record is created lazily on first write.
func GetChannelPermissions(ctx context.Context, session AccountDataSession, namespace schema.Namespace, roomID ref.RoomID) (*ChannelPermissions, error) {
	content, err := session.GetRoomAccountData(ctx, roomID, namespace.ChannelPermissionsType())
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading channel permissions for %s: %w", roomID, err)
	}

	var permissions ChannelPermissions
	if err := json.Unmarshal(content, &permissions); err != nil {
		return nil, fmt.Errorf("parsing channel permissions for %s: %w", roomID, err)
	}
	return &permissions, nil
}

// UpdateChannelPermissions applies mutate to the room's channel
// permission record via whole-record read-modify-write, creating the
// record if it does not exist. Every write bumps the advisory version
// counter and stamps the writer; concurrent writers are last-write-wins
// because the backing store offers no conditional write.
func UpdateChannelPermissions(ctx context.Context, session AccountDataSession, namespace schema.Namespace, roomID ref.RoomID, updatedBy ref.UserID, now time.Time, mutate func(*ChannelPermissions)) (*ChannelPermissions, error) {
	permissions, err := GetChannelPermissions(ctx, session, namespace, roomID)
	if err != nil {
		return nil, err
	}
	if permissions == nil {
		permissions = &ChannelPermissions{}
	}

	mutate(permissions)
	permissions.stamp(updatedBy, now)

	if err := session.SetRoomAccountData(ctx, roomID, namespace.ChannelPermissionsType(), permissions); err != nil {
		return nil, fmt.Errorf("writing channel permissions for %s: %w", roomID, err)
	}
	return permissions, nil
}
