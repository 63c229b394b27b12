// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

// Protocol default thresholds, applied when the corresponding
// power-levels field is absent. Ban, kick, and redact default to
// moderator level; invite is deliberately lower so trusted members can
// grow a room without moderator rights.
const (
	DefaultBanLevel           = 50
	DefaultKickLevel          = 50
	DefaultRedactLevel        = 50
	DefaultInviteLevel        = 25
	DefaultEventsDefaultLevel = 0
	DefaultStateDefaultLevel  = 50
	DefaultUsersDefaultLevel  = 0
)

// PowerLevels is a typed representation of the Matrix m.room.power_levels
// state event content. It supports typed read-modify-write operations:
// unmarshal the raw JSON from GetStateEvent, modify with SetUserLevel or
// SetEventLevel, then send the struct back with SendStateEvent.
//
// Pointer-to-int fields distinguish "not set" (nil, omitted from JSON) from
// "explicitly set to 0" (pointer to 0). This preserves server defaults for
// fields the caller doesn't touch. The *Level accessors apply the protocol
// defaults above, so callers never interpret nil themselves.
type PowerLevels struct {
	Users         map[string]int `json:"users,omitempty"`
	UsersDefault  *int           `json:"users_default,omitempty"`
	Events        map[string]int `json:"events,omitempty"`
	EventsDefault *int           `json:"events_default,omitempty"`
	StateDefault  *int           `json:"state_default,omitempty"`
	Invite        *int           `json:"invite,omitempty"`
	Ban           *int           `json:"ban,omitempty"`
	Kick          *int           `json:"kick,omitempty"`
	Redact        *int           `json:"redact,omitempty"`
	Notifications map[string]int `json:"notifications,omitempty"`
}

// DefaultPowerLevels returns a document with every threshold explicitly
// set to its protocol default. Used as the materialization baseline
// when a room has no existing power levels document.
func DefaultPowerLevels() *PowerLevels {
	return &PowerLevels{
		UsersDefault:  intPointer(DefaultUsersDefaultLevel),
		EventsDefault: intPointer(DefaultEventsDefaultLevel),
		StateDefault:  intPointer(DefaultStateDefaultLevel),
		Invite:        intPointer(DefaultInviteLevel),
		Ban:           intPointer(DefaultBanLevel),
		Kick:          intPointer(DefaultKickLevel),
		Redact:        intPointer(DefaultRedactLevel),
	}
}

// UserLevel returns the power level for a Matrix user. If the user has
// an explicit entry in the Users map, that value is returned. Otherwise
// falls back to UsersDefault, then to the protocol default of 0.
func (powerLevels *PowerLevels) UserLevel(userID ref.UserID) int {
	if powerLevels.Users != nil {
		if level, ok := powerLevels.Users[userID.String()]; ok {
			return level
		}
	}
	if powerLevels.UsersDefault != nil {
		return *powerLevels.UsersDefault
	}
	return DefaultUsersDefaultLevel
}

// SetUserLevel sets the power level for a Matrix user ID. Initializes the
// Users map if nil.
func (powerLevels *PowerLevels) SetUserLevel(userID ref.UserID, level int) {
	if powerLevels.Users == nil {
		powerLevels.Users = make(map[string]int)
	}
	powerLevels.Users[userID.String()] = level
}

// SetEventLevel sets the required power level for sending a given event type.
// Initializes the Events map if nil.
func (powerLevels *PowerLevels) SetEventLevel(eventType ref.EventType, level int) {
	if powerLevels.Events == nil {
		powerLevels.Events = make(map[string]int)
	}
	powerLevels.Events[string(eventType)] = level
}

// EventLevel returns the power level required to send the given event
// type: the explicit per-type entry if present, otherwise StateDefault
// or EventsDefault depending on isState, otherwise the protocol default.
func (powerLevels *PowerLevels) EventLevel(eventType ref.EventType, isState bool) int {
	if powerLevels.Events != nil {
		if level, ok := powerLevels.Events[string(eventType)]; ok {
			return level
		}
	}
	if isState {
		return powerLevels.StateDefaultLevel()
	}
	return powerLevels.EventsDefaultLevel()
}

// BanLevel returns the level required to ban, applying the default of 50.
func (powerLevels *PowerLevels) BanLevel() int {
	return levelOrDefault(powerLevels.Ban, DefaultBanLevel)
}

// KickLevel returns the level required to kick, applying the default of 50.
func (powerLevels *PowerLevels) KickLevel() int {
	return levelOrDefault(powerLevels.Kick, DefaultKickLevel)
}

// RedactLevel returns the level required to redact others' events,
// applying the default of 50.
func (powerLevels *PowerLevels) RedactLevel() int {
	return levelOrDefault(powerLevels.Redact, DefaultRedactLevel)
}

// InviteLevel returns the level required to invite, applying the default of 25.
func (powerLevels *PowerLevels) InviteLevel() int {
	return levelOrDefault(powerLevels.Invite, DefaultInviteLevel)
}

// EventsDefaultLevel returns the default level for timeline events.
func (powerLevels *PowerLevels) EventsDefaultLevel() int {
	return levelOrDefault(powerLevels.EventsDefault, DefaultEventsDefaultLevel)
}

// StateDefaultLevel returns the default level for state events.
func (powerLevels *PowerLevels) StateDefaultLevel() int {
	return levelOrDefault(powerLevels.StateDefault, DefaultStateDefaultLevel)
}

func levelOrDefault(level *int, fallback int) int {
	if level != nil {
		return *level
	}
	return fallback
}

func intPointer(value int) *int { return &value }

// StateSession is the subset of the Matrix client-server API needed for
// state event read-modify-write operations. Satisfied by
// messaging.Session and *messaging.DirectSession.
type StateSession interface {
	GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error)
	SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string, content any) (ref.EventID, error)
}

// GetPowerLevels reads and parses the current m.room.power_levels state
// event from a room. The document is read fresh on every call — the
// moderation core never caches authority state.
func GetPowerLevels(ctx context.Context, session StateSession, roomID ref.RoomID) (*PowerLevels, error) {
	content, err := session.GetStateEvent(ctx, roomID, MatrixEventTypePowerLevels, "")
	if err != nil {
		return nil, fmt.Errorf("reading power levels for %s: %w", roomID, err)
	}

	var powerLevels PowerLevels
	if err := json.Unmarshal(content, &powerLevels); err != nil {
		return nil, fmt.Errorf("parsing power levels for %s: %w", roomID, err)
	}
	return &powerLevels, nil
}

// PowerLevelGrants specifies user and event type power level changes to
// apply in a single read-modify-write operation. Either or both maps may
// be non-empty; nil maps are skipped.
type PowerLevelGrants struct {
	Users  map[ref.UserID]int
	Events map[ref.EventType]int
}

// GrantPowerLevels reads the current m.room.power_levels state event from
// a room, applies all user and event type grants, and writes the updated
// event back. One GET + one PUT regardless of how many grants are included.
//
// This is the canonical way to modify power levels in an existing room.
func GrantPowerLevels(ctx context.Context, session StateSession, roomID ref.RoomID, grants PowerLevelGrants) error {
	powerLevels, err := GetPowerLevels(ctx, session, roomID)
	if err != nil {
		return err
	}

	for userID, level := range grants.Users {
		powerLevels.SetUserLevel(userID, level)
	}
	for eventType, level := range grants.Events {
		powerLevels.SetEventLevel(eventType, level)
	}

	if _, err := session.SendStateEvent(ctx, roomID, MatrixEventTypePowerLevels, "", powerLevels); err != nil {
		return fmt.Errorf("writing power levels for %s: %w", roomID, err)
	}

	return nil
}

// SetUserPowerLevel sets a single user's power level via read-modify-write.
// This is the primitive mute and unmute are built on.
func SetUserPowerLevel(ctx context.Context, session StateSession, roomID ref.RoomID, userID ref.UserID, level int) error {
	return GrantPowerLevels(ctx, session, roomID, PowerLevelGrants{
		Users: map[ref.UserID]int{userID: level},
	})
}
