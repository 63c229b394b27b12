// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
	"github.com/chaperone-chat/chaperone/messaging"
)

func notFoundError() error {
	return &messaging.MatrixError{
		Code:       messaging.ErrCodeNotFound,
		Message:    "no account data",
		StatusCode: 404,
	}
}

var (
	testUser      = ref.MustParseUserID("@member:example.org")
	testModerator = ref.MustParseUserID("@mod:example.org")
)

func memberRole() Role {
	role, _ := TemplateByID("member")
	return role
}

func moderatorRole() Role {
	role, _ := TemplateByID("moderator")
	return role
}

func TestResolvePrecedence(t *testing.T) {
	t.Parallel()

	permissions := &ChannelPermissions{
		UserOverrides: []UserOverride{
			{
				UserID:      testUser,
				Permissions: Set{CapabilitySendMessages: false},
			},
		},
		RoleOverrides: []RoleOverride{
			{
				RoleID:      "member",
				Permissions: Set{CapabilitySendMessages: true, CapabilityPinMessages: true},
			},
			{
				RoleID:      "moderator",
				Permissions: Set{CapabilityPinMessages: false},
			},
		},
	}

	t.Run("user override beats everything", func(t *testing.T) {
		t.Parallel()
		// The role override and the base mapping both allow
		// sendMessages; the user override's explicit false must win.
		result := Resolve(testUser, CapabilitySendMessages, ResolveInput{
			Permissions: permissions,
			UserRoles:   []Role{memberRole(), moderatorRole()},
		})
		if result.Allowed {
			t.Error("user override denial was not honored")
		}
		if result.Source != SourceChannelUser {
			t.Errorf("source = %v, want channel-user", result.Source)
		}
	})

	t.Run("highest role override wins", func(t *testing.T) {
		t.Parallel()
		// Member (level 0) allows pinMessages, moderator (level 50)
		// denies it; the moderator override belongs to the higher role.
		result := Resolve(testModerator, CapabilityPinMessages, ResolveInput{
			Permissions: permissions,
			UserRoles:   []Role{memberRole(), moderatorRole()},
		})
		if result.Allowed {
			t.Error("higher role's override did not win")
		}
		if result.Source != SourceChannelRole {
			t.Errorf("source = %v, want channel-role", result.Source)
		}
	})

	t.Run("role level base check", func(t *testing.T) {
		t.Parallel()
		// No override defines kickMembers; moderator's level 50 clears
		// the threshold.
		result := Resolve(testModerator, CapabilityKickMembers, ResolveInput{
			Permissions: permissions,
			UserRoles:   []Role{moderatorRole()},
		})
		if !result.Allowed {
			t.Errorf("moderator denied kickMembers: %s", result.Reasoning)
		}
		if result.Source != SourceRole {
			t.Errorf("source = %v, want role", result.Source)
		}
	})

	t.Run("literal power level fallback", func(t *testing.T) {
		t.Parallel()
		powerLevels := &schema.PowerLevels{
			Users: map[string]int{testModerator.String(): 50},
		}
		result := Resolve(testModerator, CapabilityBanMembers, ResolveInput{
			Permissions: permissions,
			PowerLevels: powerLevels,
		})
		if !result.Allowed {
			t.Errorf("level-50 user denied banMembers: %s", result.Reasoning)
		}
		if result.Source != SourceDefault {
			t.Errorf("source = %v, want default", result.Source)
		}

		result = Resolve(testUser, CapabilityBanMembers, ResolveInput{
			Permissions: permissions,
			PowerLevels: powerLevels,
		})
		if result.Allowed {
			t.Error("level-0 user allowed banMembers")
		}
	})
}

func TestResolveSoftCapabilityDeniedByDefault(t *testing.T) {
	t.Parallel()

	// viewServerInsights has no protocol mapping. With no override it
	// must resolve to denied even for a level-100 user.
	powerLevels := &schema.PowerLevels{
		Users: map[string]int{testModerator.String(): 100},
	}
	result := Resolve(testModerator, CapabilityViewServerInsights, ResolveInput{
		PowerLevels: powerLevels,
	})
	if result.Allowed {
		t.Error("unmapped capability was implicitly granted")
	}

	// An explicit override still grants it.
	permissions := &ChannelPermissions{
		UserOverrides: []UserOverride{
			{
				UserID:      testModerator,
				Permissions: Set{CapabilityViewServerInsights: true},
			},
		},
	}
	result = Resolve(testModerator, CapabilityViewServerInsights, ResolveInput{
		Permissions: permissions,
		PowerLevels: powerLevels,
	})
	if !result.Allowed {
		t.Errorf("override of soft capability not honored: %s", result.Reasoning)
	}
}

func TestResolveNilPermissions(t *testing.T) {
	t.Parallel()

	// A channel with no override record falls straight to the base
	// check against users_default.
	result := Resolve(testUser, CapabilitySendMessages, ResolveInput{})
	if !result.Allowed {
		t.Errorf("default member denied sendMessages: %s", result.Reasoning)
	}
	if result.Source != SourceDefault {
		t.Errorf("source = %v, want default", result.Source)
	}
}

func TestBulkResolve(t *testing.T) {
	t.Parallel()

	resolved := BulkResolve(testModerator, ResolveInput{
		UserRoles: []Role{moderatorRole()},
	})

	if len(resolved) != len(Capabilities()) {
		t.Fatalf("BulkResolve returned %d entries, want %d", len(resolved), len(Capabilities()))
	}
	if !resolved[CapabilityKickMembers] {
		t.Error("moderator denied kickMembers in bulk view")
	}
	if resolved[CapabilityManageRoles] {
		t.Error("moderator allowed manageRoles in bulk view")
	}
	if resolved[CapabilityUseSlashCommands] {
		t.Error("soft capability granted in bulk view without an override")
	}
}

// fakeAccountDataSession backs store tests with an in-memory account
// data map.
type fakeAccountDataSession struct {
	data map[ref.EventType]json.RawMessage
}

func (session *fakeAccountDataSession) GetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType) (json.RawMessage, error) {
	content, present := session.data[dataType]
	if !present {
		return nil, notFoundError()
	}
	return content, nil
}

func (session *fakeAccountDataSession) SetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType, content any) error {
	encoded, err := json.Marshal(content)
	if err != nil {
		return err
	}
	if session.data == nil {
		session.data = make(map[ref.EventType]json.RawMessage)
	}
	session.data[dataType] = encoded
	return nil
}

func TestChannelPermissionsStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	session := &fakeAccountDataSession{}
	roomID := ref.MustParseRoomID("!general:example.org")
	now := time.UnixMilli(1_700_000_000_000)

	// Never written: read returns nil, not an error.
	permissions, err := GetChannelPermissions(ctx, session, schema.DefaultNamespace, roomID)
	if err != nil {
		t.Fatalf("GetChannelPermissions: %v", err)
	}
	if permissions != nil {
		t.Fatal("unwritten record resolved non-nil")
	}

	// First write creates the record lazily and stamps version 1.
	updated, err := UpdateChannelPermissions(ctx, session, schema.DefaultNamespace, roomID, testModerator, now,
		func(record *ChannelPermissions) {
			record.SetUserOverride(UserOverride{
				UserID:      testUser,
				Permissions: Set{CapabilitySendMessages: false},
				CreatedAt:   now.UnixMilli(),
				CreatedBy:   testModerator,
			})
		})
	if err != nil {
		t.Fatalf("UpdateChannelPermissions: %v", err)
	}
	if updated.Version != 1 {
		t.Errorf("version = %d, want 1", updated.Version)
	}
	if updated.LastUpdatedBy != testModerator {
		t.Errorf("last updated by = %s, want %s", updated.LastUpdatedBy, testModerator)
	}

	// Second write increments the version and removing the only
	// override leaves an empty record, not a deleted one.
	later := now.Add(time.Minute)
	updated, err = UpdateChannelPermissions(ctx, session, schema.DefaultNamespace, roomID, testModerator, later,
		func(record *ChannelPermissions) {
			if !record.RemoveUserOverride(testUser) {
				t.Error("override to remove was missing")
			}
		})
	if err != nil {
		t.Fatalf("UpdateChannelPermissions: %v", err)
	}
	if updated.Version != 2 {
		t.Errorf("version = %d, want 2", updated.Version)
	}

	final, err := GetChannelPermissions(ctx, session, schema.DefaultNamespace, roomID)
	if err != nil {
		t.Fatalf("GetChannelPermissions: %v", err)
	}
	if final == nil {
		t.Fatal("record disappeared after removing its last override")
	}
	if len(final.UserOverrides) != 0 {
		t.Errorf("user overrides remaining: %d", len(final.UserOverrides))
	}
}
