// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
	"github.com/chaperone-chat/chaperone/messaging"
)

// Source identifies which precedence level produced a resolution.
type Source int

const (
	// SourceDefault means the decision came from the user's literal
	// power level in the room and the base capability mapping.
	SourceDefault Source = iota

	// SourceRole means the decision came from the base mapping checked
	// against the highest power level among the user's roles.
	SourceRole

	// SourceChannelRole means a per-channel role override decided.
	SourceChannelRole

	// SourceChannelUser means a per-channel user override decided.
	SourceChannelUser
)

// String returns the wire name of the source.
func (source Source) String() string {
	switch source {
	case SourceChannelUser:
		return "channel-user"
	case SourceChannelRole:
		return "channel-role"
	case SourceRole:
		return "role"
	default:
		return "default"
	}
}

// MarshalText renders the source by its wire name in JSON output.
func (source Source) MarshalText() ([]byte, error) {
	return []byte(source.String()), nil
}

// Result is the outcome of resolving one (channel, user, capability)
// triple. Reasoning is a human-readable trace for debugging and the
// resolve CLI; decisions are made from Allowed and Source alone.
type Result struct {
	Allowed   bool   `json:"allowed"`
	Source    Source `json:"source"`
	Reasoning string `json:"reasoning"`
}

// ResolveInput carries the state a resolution reads. All fields are
// optional: a nil Permissions means the channel has no override record,
// nil UserRoles means role memberships are unknown, and nil PowerLevels
// is treated as an empty document (protocol defaults apply).
type ResolveInput struct {
	Permissions *ChannelPermissions
	UserRoles   []Role
	PowerLevels *schema.PowerLevels
}

// Resolve computes the effective value of one capability for one user
// in one channel. Strict precedence, first match wins:
//
//  1. A user override in the channel that explicitly sets the
//     capability.
//  2. A role override in the channel for one of the user's roles; when
//     several of the user's roles have overrides, the override of the
//     highest-power-level role wins.
//  3. The base mapping check against the highest power level among the
//     user's roles, when role memberships are known.
//  4. The base mapping check against the user's literal power level in
//     the room (users_default if absent).
//
// A capability with no protocol mapping and no override resolves to
// denied: the absence of a mapping is not an implicit grant.
func Resolve(userID ref.UserID, capability Capability, input ResolveInput) Result {
	if override := input.Permissions.UserOverrideFor(userID); override != nil {
		if override.Permissions.Defines(capability) {
			allowed := override.Permissions.Enabled(capability)
			return Result{
				Allowed:   allowed,
				Source:    SourceChannelUser,
				Reasoning: fmt.Sprintf("user override in this channel explicitly %s %s", verdict(allowed), capability),
			}
		}
	}

	if input.UserRoles != nil {
		if result, ok := resolveRoleOverride(capability, input); ok {
			return result
		}

		level := HighestPowerLevel(input.UserRoles)
		result := baseCheck(capability, level)
		result.Source = SourceRole
		result.Reasoning = fmt.Sprintf("highest role power level %d: %s", level, result.Reasoning)
		return result
	}

	level := 0
	if input.PowerLevels != nil {
		level = input.PowerLevels.UserLevel(userID)
	}
	result := baseCheck(capability, level)
	result.Source = SourceDefault
	result.Reasoning = fmt.Sprintf("room power level %d: %s", level, result.Reasoning)
	return result
}

// resolveRoleOverride finds the channel role override that decides the
// capability, if any. Overrides belonging to higher-power roles win.
func resolveRoleOverride(capability Capability, input ResolveInput) (Result, bool) {
	var (
		best      *RoleOverride
		bestRole  Role
		bestFound bool
	)
	for _, role := range input.UserRoles {
		override := input.Permissions.RoleOverrideFor(role.ID)
		if override == nil || !override.Permissions.Defines(capability) {
			continue
		}
		if !bestFound || role.PowerLevel > bestRole.PowerLevel {
			best = override
			bestRole = role
			bestFound = true
		}
	}
	if !bestFound {
		return Result{}, false
	}

	allowed := best.Permissions.Enabled(capability)
	return Result{
		Allowed:   allowed,
		Source:    SourceChannelRole,
		Reasoning: fmt.Sprintf("role override for %q (power level %d) explicitly %s %s", bestRole.ID, bestRole.PowerLevel, verdict(allowed), capability),
	}, true
}

// baseCheck applies the capability's protocol mappings to a power
// level. Source and the level prefix of Reasoning are filled in by the
// caller.
func baseCheck(capability Capability, level int) Result {
	mappings := MappingsFor(capability)
	if len(mappings) == 0 {
		return Result{
			Allowed:   false,
			Reasoning: fmt.Sprintf("%s has no protocol mapping and no override applies, denied by default", capability),
		}
	}

	required := 0
	for _, mapping := range mappings {
		if mapping.RequiredLevel > required {
			required = mapping.RequiredLevel
		}
	}
	if level >= required {
		return Result{
			Allowed:   true,
			Reasoning: fmt.Sprintf("meets the required level %d for %s", required, capability),
		}
	}
	return Result{
		Allowed:   false,
		Reasoning: fmt.Sprintf("below the required level %d for %s", required, capability),
	}
}

func verdict(allowed bool) string {
	if allowed {
		return "allows"
	}
	return "denies"
}

// Session is the subset of the Matrix client-server API a Resolver
// reads: power levels (room state) and channel permission records
// (room account data). Satisfied by messaging.Session.
type Session interface {
	schema.StateSession
	AccountDataSession
}

// Resolver reads authority state fresh from a room on every call and
// resolves capabilities against it. Construct one per session; it holds
// no mutable state of its own.
type Resolver struct {
	session   Session
	namespace schema.Namespace
	logger    *slog.Logger
}

// NewResolver returns a Resolver reading through the given session.
func NewResolver(session Session, namespace schema.Namespace, logger *slog.Logger) *Resolver {
	return &Resolver{session: session, namespace: namespace, logger: logger}
}

// Resolve fetches the room's power levels and channel permission record
// and resolves the capability. Pass nil userRoles when role memberships
// are unknown; resolution then falls through to the literal power level.
func (resolver *Resolver) Resolve(ctx context.Context, roomID ref.RoomID, userID ref.UserID, capability Capability, userRoles []Role) (Result, error) {
	input, err := resolver.loadInput(ctx, roomID, userRoles)
	if err != nil {
		return Result{}, err
	}

	result := Resolve(userID, capability, input)
	resolver.logger.Debug("resolved capability",
		"room_id", roomID,
		"user_id", userID,
		"capability", capability.String(),
		"allowed", result.Allowed,
		"source", result.Source.String())
	return result, nil
}

// BulkResolve resolves every capability for one user with a single
// fetch of the room's authority state.
func (resolver *Resolver) BulkResolve(ctx context.Context, roomID ref.RoomID, userID ref.UserID, userRoles []Role) (map[Capability]bool, error) {
	input, err := resolver.loadInput(ctx, roomID, userRoles)
	if err != nil {
		return nil, err
	}
	return BulkResolve(userID, input), nil
}

func (resolver *Resolver) loadInput(ctx context.Context, roomID ref.RoomID, userRoles []Role) (ResolveInput, error) {
	powerLevels, err := schema.GetPowerLevels(ctx, resolver.session, roomID)
	if err != nil {
		if !messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return ResolveInput{}, err
		}
		powerLevels = &schema.PowerLevels{}
	}

	permissions, err := GetChannelPermissions(ctx, resolver.session, resolver.namespace, roomID)
	if err != nil {
		return ResolveInput{}, err
	}

	return ResolveInput{
		Permissions: permissions,
		UserRoles:   userRoles,
		PowerLevels: powerLevels,
	}, nil
}
