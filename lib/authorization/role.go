// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

// Role is a named capability set with an associated power level. Roles
// are a product abstraction layered over the protocol: assigning a role
// means granting its power level in the room, and the capability set
// records what that level was meant to convey. The power level is
// authoritative at runtime; the capability set drives provisioning and
// the resolver's role-override lookups.
type Role struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PowerLevel   int    `json:"power_level"`
	Capabilities Set    `json:"capabilities"`
}

// RoleTemplates returns the preset roles used to seed new servers:
// Administrator at 100, Moderator at 50, Member at 0. Templates are
// starting points; runtime authority comes from the room's actual
// power levels.
func RoleTemplates() []Role {
	return []Role{
		{
			ID:         "administrator",
			Name:       "Administrator",
			PowerLevel: 100,
			Capabilities: NewSet(
				CapabilityAdministrator,
				CapabilityViewChannels,
				CapabilitySendMessages,
				CapabilityEmbedLinks,
				CapabilityAttachFiles,
				CapabilityAddReactions,
				CapabilityMentionEveryone,
				CapabilityCreateInvite,
				CapabilityChangeNickname,
				CapabilityManageNicknames,
				CapabilityKickMembers,
				CapabilityBanMembers,
				CapabilityMuteMembers,
				CapabilityDeleteMessages,
				CapabilityPinMessages,
				CapabilityManageChannels,
				CapabilityManageRoles,
				CapabilityManageServer,
				CapabilityUseSlashCommands,
				CapabilityViewServerInsights,
			),
		},
		{
			ID:         "moderator",
			Name:       "Moderator",
			PowerLevel: 50,
			Capabilities: NewSet(
				CapabilityViewChannels,
				CapabilitySendMessages,
				CapabilityEmbedLinks,
				CapabilityAttachFiles,
				CapabilityAddReactions,
				CapabilityMentionEveryone,
				CapabilityCreateInvite,
				CapabilityChangeNickname,
				CapabilityManageNicknames,
				CapabilityKickMembers,
				CapabilityBanMembers,
				CapabilityMuteMembers,
				CapabilityDeleteMessages,
				CapabilityPinMessages,
				CapabilityUseSlashCommands,
			),
		},
		{
			ID:         "member",
			Name:       "Member",
			PowerLevel: 0,
			Capabilities: NewSet(
				CapabilityViewChannels,
				CapabilitySendMessages,
				CapabilityEmbedLinks,
				CapabilityAttachFiles,
				CapabilityAddReactions,
				CapabilityCreateInvite,
				CapabilityChangeNickname,
				CapabilityUseSlashCommands,
			),
		},
	}
}

// TemplateByID returns the named role template, or false if no template
// has that ID. "admin" and "mod" are accepted as shorthand for the
// administrator and moderator templates.
func TemplateByID(id string) (Role, bool) {
	switch id {
	case "admin":
		id = "administrator"
	case "mod":
		id = "moderator"
	}
	for _, template := range RoleTemplates() {
		if template.ID == id {
			return template, true
		}
	}
	return Role{}, false
}

// HighestPowerLevel returns the largest power level among the roles, or
// 0 for an empty slice.
func HighestPowerLevel(roles []Role) int {
	highest := 0
	for index, role := range roles {
		if index == 0 || role.PowerLevel > highest {
			highest = role.PowerLevel
		}
	}
	return highest
}
