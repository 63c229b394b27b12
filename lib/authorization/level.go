// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"fmt"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
)

// AdministratorLevel is the power level the administrator capability
// demands. Protocol convention: room creators get 100.
const AdministratorLevel = 100

// RequiredPowerLevel computes the minimum power level that satisfies
// every enabled capability in the set: the maximum RequiredLevel across
// all mappings of enabled capabilities. Soft capabilities contribute
// nothing; a set with no mapped capabilities requires level 0.
func RequiredPowerLevel(set Set) int {
	required := 0
	for capability, enabled := range set {
		if !enabled {
			continue
		}
		for _, mapping := range MappingsFor(capability) {
			if mapping.RequiredLevel > required {
				required = mapping.RequiredLevel
			}
		}
	}
	return required
}

// MaterializePowerLevels produces a full power-levels document granting
// exactly the given capability set at the thresholds the mapping table
// demands. Starts from a copy of baseline, or from the protocol
// defaults when baseline is nil. The dedicated thresholds (ban, kick,
// invite, redact) and the two defaults are only ever raised; named
// event-type entries are set to the mapped level directly.
func MaterializePowerLevels(set Set, baseline *schema.PowerLevels) *schema.PowerLevels {
	document := schema.DefaultPowerLevels()
	if baseline != nil {
		document = clonePowerLevels(baseline)
	}

	for capability, enabled := range set {
		if !enabled {
			continue
		}
		for _, mapping := range MappingsFor(capability) {
			applyMapping(document, mapping)
		}
	}
	return document
}

func applyMapping(document *schema.PowerLevels, mapping Mapping) {
	switch mapping.Threshold {
	case ThresholdEvents:
		document.SetEventLevel(mapping.EventType, mapping.RequiredLevel)
	case ThresholdBan:
		raise(&document.Ban, mapping.RequiredLevel, schema.DefaultBanLevel)
	case ThresholdKick:
		raise(&document.Kick, mapping.RequiredLevel, schema.DefaultKickLevel)
	case ThresholdInvite:
		raise(&document.Invite, mapping.RequiredLevel, schema.DefaultInviteLevel)
	case ThresholdRedact:
		raise(&document.Redact, mapping.RequiredLevel, schema.DefaultRedactLevel)
	case ThresholdEventsDefault:
		raise(&document.EventsDefault, mapping.RequiredLevel, schema.DefaultEventsDefaultLevel)
	case ThresholdStateDefault:
		raise(&document.StateDefault, mapping.RequiredLevel, schema.DefaultStateDefaultLevel)
	case ThresholdNotificationsRoom:
		if document.Notifications == nil {
			document.Notifications = make(map[string]int)
		}
		if current, ok := document.Notifications["room"]; !ok || mapping.RequiredLevel > current {
			document.Notifications["room"] = mapping.RequiredLevel
		}
	}
}

// raise sets *field to level unless it already holds a higher value.
// A nil field is treated as holding its protocol default.
func raise(field **int, level, protocolDefault int) {
	current := protocolDefault
	if *field != nil {
		current = **field
	}
	if level > current {
		current = level
	}
	*field = &current
}

func clonePowerLevels(original *schema.PowerLevels) *schema.PowerLevels {
	cloned := *original
	cloned.Users = cloneIntMap(original.Users)
	cloned.Events = cloneIntMap(original.Events)
	cloned.Notifications = cloneIntMap(original.Notifications)
	cloned.UsersDefault = cloneIntPointer(original.UsersDefault)
	cloned.EventsDefault = cloneIntPointer(original.EventsDefault)
	cloned.StateDefault = cloneIntPointer(original.StateDefault)
	cloned.Invite = cloneIntPointer(original.Invite)
	cloned.Ban = cloneIntPointer(original.Ban)
	cloned.Kick = cloneIntPointer(original.Kick)
	cloned.Redact = cloneIntPointer(original.Redact)
	return &cloned
}

func cloneIntMap(original map[string]int) map[string]int {
	if original == nil {
		return nil
	}
	cloned := make(map[string]int, len(original))
	for key, value := range original {
		cloned[key] = value
	}
	return cloned
}

func cloneIntPointer(original *int) *int {
	if original == nil {
		return nil
	}
	value := *original
	return &value
}

// Validate checks a capability set against a proposed power level and
// returns human-readable problems. An empty slice means the pairing is
// consistent. This never writes anything; callers run it before
// provisioning a role.
func Validate(set Set, powerLevel int) []string {
	var problems []string

	if required := RequiredPowerLevel(set); powerLevel < required {
		problems = append(problems, fmt.Sprintf(
			"power level %d does not satisfy the enabled capabilities (requires at least %d)",
			powerLevel, required))
	}
	if set.Enabled(CapabilityAdministrator) && powerLevel < AdministratorLevel {
		problems = append(problems, fmt.Sprintf(
			"administrator requires power level %d, got %d", AdministratorLevel, powerLevel))
	}
	if set.Enabled(CapabilitySendMessages) && !set.Enabled(CapabilityViewChannels) {
		problems = append(problems,
			"sendMessages without viewChannels is inconsistent: the user could post to channels they cannot see")
	}
	return problems
}

// BulkResolve computes the effective value of every capability for one
// user, calling Resolve once per capability. Used to render a full
// effective-permission view.
func BulkResolve(userID ref.UserID, input ResolveInput) map[Capability]bool {
	resolved := make(map[Capability]bool, capabilityCount)
	for _, capability := range Capabilities() {
		resolved[capability] = Resolve(userID, capability, input).Allowed
	}
	return resolved
}
