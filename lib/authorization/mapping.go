// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import "github.com/chaperone-chat/chaperone/lib/ref"

// Scope restricts where a mapping applies.
type Scope int

const (
	// ScopeBoth applies in channels and spaces alike.
	ScopeBoth Scope = iota

	// ScopeRoom applies only in ordinary channels.
	ScopeRoom

	// ScopeSpace applies only in space rooms.
	ScopeSpace
)

// String returns "both", "room", or "space".
func (scope Scope) String() string {
	switch scope {
	case ScopeRoom:
		return "room"
	case ScopeSpace:
		return "space"
	default:
		return "both"
	}
}

// Threshold names a top-level power-levels field a mapping raises
// instead of an entry in the events dictionary. Ban, kick, invite, and
// redact are dedicated fields in the protocol document; the two
// defaults are raised via max rather than set directly.
type Threshold int

const (
	// ThresholdEvents means the mapping targets the named event type
	// in the events dictionary.
	ThresholdEvents Threshold = iota

	ThresholdBan
	ThresholdKick
	ThresholdInvite
	ThresholdRedact
	ThresholdEventsDefault
	ThresholdStateDefault

	// ThresholdNotificationsRoom targets notifications.room, the
	// @room mention threshold.
	ThresholdNotificationsRoom
)

// Mapping ties a capability to one protocol requirement. EventType is
// only meaningful when Threshold is ThresholdEvents.
type Mapping struct {
	Threshold     Threshold
	EventType     ref.EventType
	RequiredLevel int
	IsState       bool
	Scope         Scope
}

// capabilityMappings is the static capability-to-protocol table. A
// capability absent from the table (or mapped to an empty list) is
// "soft": it has no protocol equivalent and is enforced only by the
// resolver's own override checks, which deny it by default.
var capabilityMappings = map[Capability][]Mapping{
	CapabilityAdministrator: {
		{Threshold: ThresholdEvents, EventType: "m.room.power_levels", RequiredLevel: 100, IsState: true, Scope: ScopeBoth},
	},
	CapabilitySendMessages: {
		{Threshold: ThresholdEvents, EventType: "m.room.message", RequiredLevel: 0, Scope: ScopeRoom},
		{Threshold: ThresholdEventsDefault, RequiredLevel: 0, Scope: ScopeRoom},
	},
	CapabilityAttachFiles: {
		{Threshold: ThresholdEvents, EventType: "m.room.message", RequiredLevel: 0, Scope: ScopeRoom},
	},
	CapabilityAddReactions: {
		{Threshold: ThresholdEvents, EventType: "m.reaction", RequiredLevel: 0, Scope: ScopeRoom},
	},
	CapabilityMentionEveryone: {
		{Threshold: ThresholdNotificationsRoom, RequiredLevel: 50, Scope: ScopeRoom},
	},
	CapabilityCreateInvite: {
		{Threshold: ThresholdInvite, RequiredLevel: 25, Scope: ScopeBoth},
	},
	CapabilityKickMembers: {
		{Threshold: ThresholdKick, RequiredLevel: 50, Scope: ScopeBoth},
	},
	CapabilityBanMembers: {
		{Threshold: ThresholdBan, RequiredLevel: 50, Scope: ScopeBoth},
	},
	CapabilityMuteMembers: {
		{Threshold: ThresholdEvents, EventType: "m.room.power_levels", RequiredLevel: 50, IsState: true, Scope: ScopeBoth},
	},
	CapabilityDeleteMessages: {
		{Threshold: ThresholdRedact, RequiredLevel: 50, Scope: ScopeRoom},
	},
	CapabilityPinMessages: {
		{Threshold: ThresholdEvents, EventType: "m.room.pinned_events", RequiredLevel: 50, IsState: true, Scope: ScopeRoom},
	},
	CapabilityManageChannels: {
		{Threshold: ThresholdEvents, EventType: "m.room.name", RequiredLevel: 50, IsState: true, Scope: ScopeBoth},
		{Threshold: ThresholdEvents, EventType: "m.room.topic", RequiredLevel: 50, IsState: true, Scope: ScopeBoth},
		{Threshold: ThresholdEvents, EventType: "m.room.avatar", RequiredLevel: 50, IsState: true, Scope: ScopeBoth},
	},
	CapabilityManageRoles: {
		{Threshold: ThresholdEvents, EventType: "m.room.power_levels", RequiredLevel: 100, IsState: true, Scope: ScopeBoth},
	},
	CapabilityManageServer: {
		{Threshold: ThresholdEvents, EventType: "m.space.child", RequiredLevel: 50, IsState: true, Scope: ScopeSpace},
		{Threshold: ThresholdEvents, EventType: "m.room.server_acl", RequiredLevel: 100, IsState: true, Scope: ScopeRoom},
	},
}

// MappingsFor returns the protocol mappings for a capability. A nil
// slice means the capability is soft. Pure lookup, never fails.
func MappingsFor(capability Capability) []Mapping {
	return capabilityMappings[capability]
}

// Soft reports whether the capability has no protocol mapping.
func Soft(capability Capability) bool {
	return len(capabilityMappings[capability]) == 0
}
