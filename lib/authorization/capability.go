// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import "fmt"

// Capability is a named, product-level permission. The enumeration is
// closed: every capability the product knows about is listed here, and
// the mapping table in mapping.go is indexed by it. Wire formats use
// the camelCase string names via TextMarshaler, so a Set serializes as
// a JSON object keyed by capability name.
type Capability int

const (
	// CapabilityAdministrator grants everything. Mapped to the room
	// power-levels event at level 100.
	CapabilityAdministrator Capability = iota

	// CapabilityViewChannels controls whether channels are visible.
	// Soft: visibility is enforced by this system's own checks, not by
	// a power-level threshold.
	CapabilityViewChannels

	// CapabilitySendMessages controls posting timeline messages.
	CapabilitySendMessages

	// CapabilityEmbedLinks controls link previews in messages. Soft.
	CapabilityEmbedLinks

	// CapabilityAttachFiles controls media uploads in messages.
	CapabilityAttachFiles

	// CapabilityAddReactions controls sending reaction events.
	CapabilityAddReactions

	// CapabilityMentionEveryone controls @room notifications.
	CapabilityMentionEveryone

	// CapabilityCreateInvite controls inviting users to the channel.
	CapabilityCreateInvite

	// CapabilityChangeNickname controls changing one's own display
	// name. Soft.
	CapabilityChangeNickname

	// CapabilityManageNicknames controls changing other members'
	// display names. Soft.
	CapabilityManageNicknames

	// CapabilityKickMembers controls removing members from a channel.
	CapabilityKickMembers

	// CapabilityBanMembers controls banning and unbanning members.
	CapabilityBanMembers

	// CapabilityMuteMembers controls muting, which is implemented as a
	// power-level edit and therefore maps to the power-levels event.
	CapabilityMuteMembers

	// CapabilityDeleteMessages controls redacting other users'
	// messages. Own messages are always deletable.
	CapabilityDeleteMessages

	// CapabilityPinMessages controls the pinned-events state.
	CapabilityPinMessages

	// CapabilityManageChannels controls channel name, topic, and
	// avatar.
	CapabilityManageChannels

	// CapabilityManageRoles controls editing role assignments, which
	// reduces to editing the power-levels document.
	CapabilityManageRoles

	// CapabilityManageServer controls space-level structure and server
	// ACLs.
	CapabilityManageServer

	// CapabilityUseSlashCommands controls client-side commands. Soft.
	CapabilityUseSlashCommands

	// CapabilityViewServerInsights controls access to analytics
	// surfaces. Soft.
	CapabilityViewServerInsights

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	CapabilityAdministrator:      "administrator",
	CapabilityViewChannels:       "viewChannels",
	CapabilitySendMessages:       "sendMessages",
	CapabilityEmbedLinks:         "embedLinks",
	CapabilityAttachFiles:        "attachFiles",
	CapabilityAddReactions:       "addReactions",
	CapabilityMentionEveryone:    "mentionEveryone",
	CapabilityCreateInvite:       "createInvite",
	CapabilityChangeNickname:     "changeNickname",
	CapabilityManageNicknames:    "manageNicknames",
	CapabilityKickMembers:        "kickMembers",
	CapabilityBanMembers:         "banMembers",
	CapabilityMuteMembers:        "muteMembers",
	CapabilityDeleteMessages:     "deleteMessages",
	CapabilityPinMessages:        "pinMessages",
	CapabilityManageChannels:     "manageChannels",
	CapabilityManageRoles:        "manageRoles",
	CapabilityManageServer:       "manageServer",
	CapabilityUseSlashCommands:   "useSlashCommands",
	CapabilityViewServerInsights: "viewServerInsights",
}

// String returns the capability's camelCase wire name.
func (capability Capability) String() string {
	if capability < 0 || capability >= capabilityCount {
		return fmt.Sprintf("capability(%d)", int(capability))
	}
	return capabilityNames[capability]
}

// Valid reports whether the capability is a member of the enumeration.
func (capability Capability) Valid() bool {
	return capability >= 0 && capability < capabilityCount
}

// MarshalText implements encoding.TextMarshaler so capabilities can be
// used as JSON object keys.
func (capability Capability) MarshalText() ([]byte, error) {
	if !capability.Valid() {
		return nil, fmt.Errorf("invalid capability %d", int(capability))
	}
	return []byte(capabilityNames[capability]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names are
// an error: the enumeration is closed, and silently dropping an unknown
// capability would turn a typo into a permission change.
func (capability *Capability) UnmarshalText(text []byte) error {
	parsed, err := ParseCapability(string(text))
	if err != nil {
		return err
	}
	*capability = parsed
	return nil
}

// ParseCapability converts a wire name back to a Capability.
func ParseCapability(name string) (Capability, error) {
	for index, candidate := range capabilityNames {
		if candidate == name {
			return Capability(index), nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}

// Capabilities returns every member of the enumeration in declaration
// order.
func Capabilities() []Capability {
	all := make([]Capability, capabilityCount)
	for index := range all {
		all[index] = Capability(index)
	}
	return all
}

// Set is a full or partial capability set. In a full set (role
// templates) every capability the role grants is present with value
// true. In a partial set (overrides) presence is significant: a
// capability absent from the map is not overridden and falls through
// to the next precedence level, while an explicit false is a denial.
type Set map[Capability]bool

// NewSet builds a Set with the given capabilities enabled.
func NewSet(capabilities ...Capability) Set {
	set := make(Set, len(capabilities))
	for _, capability := range capabilities {
		set[capability] = true
	}
	return set
}

// Enabled reports whether the capability is present and true.
func (set Set) Enabled(capability Capability) bool {
	return set[capability]
}

// Defines reports whether the capability is present at all, regardless
// of value. Used when the Set is a partial override.
func (set Set) Defines(capability Capability) bool {
	_, present := set[capability]
	return present
}

// Clone returns a copy the caller can mutate independently.
func (set Set) Clone() Set {
	cloned := make(Set, len(set))
	for capability, value := range set {
		cloned[capability] = value
	}
	return cloned
}
