// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
)

func TestNewBanRecord(t *testing.T) {
	t.Parallel()

	actor := ref.MustParseUserID("@mod:example.org")
	now := time.UnixMilli(1_700_000_000_000)

	t.Run("permanent", func(t *testing.T) {
		t.Parallel()
		record := NewBanRecord(actor, "spam", now, 0)
		if !record.Active {
			t.Error("record not active")
		}
		if record.ExpiresAt != nil {
			t.Errorf("permanent ban has expires_at %d", *record.ExpiresAt)
		}
		if record.Expired(now.Add(24 * time.Hour)) {
			t.Error("permanent ban reported as expired")
		}

		encoded, err := json.Marshal(record)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		var generic map[string]json.RawMessage
		if err := json.Unmarshal(encoded, &generic); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if _, present := generic["expires_at"]; present {
			t.Error("expires_at serialized for permanent ban")
		}
	})

	t.Run("timed", func(t *testing.T) {
		t.Parallel()
		record := NewBanRecord(actor, "cool off", now, time.Hour)
		if record.ExpiresAt == nil {
			t.Fatal("timed ban has no expires_at")
		}
		wantExpiry := now.UnixMilli() + time.Hour.Milliseconds()
		if *record.ExpiresAt != wantExpiry {
			t.Errorf("expires_at = %d, want %d", *record.ExpiresAt, wantExpiry)
		}
		if record.Expired(now.Add(59 * time.Minute)) {
			t.Error("ban expired before its duration elapsed")
		}
		if !record.Expired(now.Add(time.Hour)) {
			t.Error("ban not expired exactly at its expiry instant")
		}
	})
}

func TestNewMuteRecord(t *testing.T) {
	t.Parallel()

	actor := ref.MustParseUserID("@mod:example.org")
	now := time.UnixMilli(1_700_000_000_000)

	record := NewMuteRecord(actor, "flooding", now, 30*time.Minute, 25)
	if record.OriginalPowerLevel != 25 {
		t.Errorf("original power level = %d, want 25", record.OriginalPowerLevel)
	}
	if record.DurationMs != (30 * time.Minute).Milliseconds() {
		t.Errorf("duration_ms = %d, want %d", record.DurationMs, (30 * time.Minute).Milliseconds())
	}
	if !record.Expired(now.Add(31 * time.Minute)) {
		t.Error("mute not expired after its duration")
	}

	inactive := record
	inactive.Active = false
	if inactive.Expired(now.Add(time.Hour)) {
		t.Error("inactive record reported as expired")
	}
}

func TestNewLogEntry(t *testing.T) {
	t.Parallel()

	actor := ref.MustParseUserID("@mod:example.org")
	target := ref.MustParseUserID("@spammer:example.org")
	now := time.UnixMilli(1_700_000_000_000)

	entry := NewLogEntry(ActionBan, actor, target, "spam", now)
	if entry.Action != ActionBan || entry.ActorID != actor || entry.TargetID != target {
		t.Errorf("entry = %+v, want ban of %s by %s", entry, target, actor)
	}
	if entry.Timestamp != now.UnixMilli() {
		t.Errorf("timestamp = %d, want %d", entry.Timestamp, now.UnixMilli())
	}
	if entry.Automatic {
		t.Error("manual entry marked automatic")
	}
}

func TestNamespaceEventTypes(t *testing.T) {
	t.Parallel()

	namespace := DefaultNamespace
	checks := []struct {
		got  ref.EventType
		want ref.EventType
	}{
		{namespace.BanRecordType(), "chat.chaperone.moderation.ban"},
		{namespace.MuteRecordType(), "chat.chaperone.moderation.mute"},
		{namespace.ModerationLogType(), "chat.chaperone.moderation.log"},
		{namespace.ChannelPermissionsType(), "chat.chaperone.channel_permissions"},
	}
	for _, check := range checks {
		if check.got != check.want {
			t.Errorf("event type = %q, want %q", check.got, check.want)
		}
	}
}
