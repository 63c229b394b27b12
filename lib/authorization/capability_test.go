// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package authorization

import (
	"encoding/json"
	"testing"
)

func TestCapabilityNames(t *testing.T) {
	t.Parallel()

	for _, capability := range Capabilities() {
		name := capability.String()
		if name == "" {
			t.Errorf("capability %d has no name", int(capability))
			continue
		}
		parsed, err := ParseCapability(name)
		if err != nil {
			t.Errorf("ParseCapability(%q): %v", name, err)
			continue
		}
		if parsed != capability {
			t.Errorf("ParseCapability(%q) = %v, want %v", name, parsed, capability)
		}
	}

	if _, err := ParseCapability("launchMissiles"); err == nil {
		t.Error("ParseCapability accepted an unknown name")
	}
}

func TestSetJSONKeys(t *testing.T) {
	t.Parallel()

	set := Set{
		CapabilityKickMembers:  true,
		CapabilitySendMessages: false,
	}
	encoded, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var generic map[string]bool
	if err := json.Unmarshal(encoded, &generic); err != nil {
		t.Fatalf("Unmarshal into map: %v", err)
	}
	if !generic["kickMembers"] {
		t.Error("kickMembers not serialized as an object key")
	}
	if value, present := generic["sendMessages"]; !present || value {
		t.Error("explicit false for sendMessages was lost")
	}

	var decoded Set
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Defines(CapabilitySendMessages) || decoded.Enabled(CapabilitySendMessages) {
		t.Error("round trip lost the partial-set distinction between absent and false")
	}

	if err := json.Unmarshal([]byte(`{"notACapability":true}`), &decoded); err == nil {
		t.Error("unknown capability key was silently accepted")
	}
}

func TestSetPartialSemantics(t *testing.T) {
	t.Parallel()

	set := Set{CapabilityBanMembers: false}
	if set.Enabled(CapabilityBanMembers) {
		t.Error("explicit false reported as enabled")
	}
	if !set.Defines(CapabilityBanMembers) {
		t.Error("explicit false reported as undefined")
	}
	if set.Defines(CapabilityKickMembers) {
		t.Error("absent capability reported as defined")
	}
}
