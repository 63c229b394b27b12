// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// RoleOverride adjusts specific capabilities for one role within one
// channel. Permissions is partial: only the capabilities present in the
// map are overridden, everything else falls through to the role's base
// value.
type RoleOverride struct {
	RoleID      string     `json:"role_id"`
	Name        string     `json:"name,omitempty"`
	Permissions Set        `json:"permissions"`
	CreatedAt   int64      `json:"created_at"`
	CreatedBy   ref.UserID `json:"created_by"`
}

// UserOverride adjusts specific capabilities for one user within one
// channel. Same partial semantics as RoleOverride.
type UserOverride struct {
	UserID      ref.UserID `json:"user_id"`
	Name        string     `json:"name,omitempty"`
	Permissions Set        `json:"permissions"`
	CreatedAt   int64      `json:"created_at"`
	CreatedBy   ref.UserID `json:"created_by"`
}

// ChannelPermissions is the per-channel override record, stored whole
// as room account data. Created lazily on the first override write;
// never deleted, only reduced to empty lists. Version increments on
// every write but is advisory only: the backing store has no
// conditional write, so concurrent writers are last-write-wins.
type ChannelPermissions struct {
	RoleOverrides     []RoleOverride `json:"role_overrides"`
	UserOverrides     []UserOverride `json:"user_overrides"`
	InheritFromParent bool           `json:"inherit_from_parent"`
	Version           int64          `json:"version"`
	LastUpdated       int64          `json:"last_updated"`
	LastUpdatedBy     ref.UserID     `json:"last_updated_by"`
}

// UserOverrideFor returns the override for a user, or nil.
func (permissions *ChannelPermissions) UserOverrideFor(userID ref.UserID) *UserOverride {
	if permissions == nil {
		return nil
	}
	for index := range permissions.UserOverrides {
		if permissions.UserOverrides[index].UserID == userID {
			return &permissions.UserOverrides[index]
		}
	}
	return nil
}

// RoleOverrideFor returns the override for a role ID, or nil.
func (permissions *ChannelPermissions) RoleOverrideFor(roleID string) *RoleOverride {
	if permissions == nil {
		return nil
	}
	for index := range permissions.RoleOverrides {
		if permissions.RoleOverrides[index].RoleID == roleID {
			return &permissions.RoleOverrides[index]
		}
	}
	return nil
}

// SetUserOverride inserts or replaces the override for a user. The
// stamp records who is writing and when.
func (permissions *ChannelPermissions) SetUserOverride(override UserOverride) {
	for index := range permissions.UserOverrides {
		if permissions.UserOverrides[index].UserID == override.UserID {
			permissions.UserOverrides[index] = override
			return
		}
	}
	permissions.UserOverrides = append(permissions.UserOverrides, override)
}

// SetRoleOverride inserts or replaces the override for a role.
func (permissions *ChannelPermissions) SetRoleOverride(override RoleOverride) {
	for index := range permissions.RoleOverrides {
		if permissions.RoleOverrides[index].RoleID == override.RoleID {
			permissions.RoleOverrides[index] = override
			return
		}
	}
	permissions.RoleOverrides = append(permissions.RoleOverrides, override)
}

// RemoveUserOverride deletes the override for a user. Reports whether
// an override was present.
func (permissions *ChannelPermissions) RemoveUserOverride(userID ref.UserID) bool {
	for index := range permissions.UserOverrides {
		if permissions.UserOverrides[index].UserID == userID {
			permissions.UserOverrides = append(
				permissions.UserOverrides[:index], permissions.UserOverrides[index+1:]...)
			return true
		}
	}
	return false
}

// RemoveRoleOverride deletes the override for a role. Reports whether
// an override was present.
func (permissions *ChannelPermissions) RemoveRoleOverride(roleID string) bool {
	for index := range permissions.RoleOverrides {
		if permissions.RoleOverrides[index].RoleID == roleID {
			permissions.RoleOverrides = append(
				permissions.RoleOverrides[:index], permissions.RoleOverrides[index+1:]...)
			return true
		}
	}
	return false
}

// stamp bumps the version and records the writer. Called by the store
// on every write.
func (permissions *ChannelPermissions) stamp(updatedBy ref.UserID, now time.Time) {
	permissions.Version++
	permissions.LastUpdated = now.UnixMilli()
	permissions.LastUpdatedBy = updatedBy
}
