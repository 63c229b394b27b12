// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema defines the typed content of every Matrix event and
// account-data document Chaperone reads or writes.
//
// [PowerLevels] is a typed representation of the standard
// m.room.power_levels state event, with accessors that apply the
// protocol defaults for unset fields. [GrantPowerLevels] and
// [SetUserPowerLevel] perform the canonical read-modify-write cycle
// against a live room.
//
// [BanRecord] and [MuteRecord] are the moderation records Chaperone
// persists as custom namespaced state events, keyed by target user ID.
// [ModerationLogEntry] is one record of the append-only audit log, each
// stored as its own state event keyed by a unique log ID. [Namespace]
// derives the event types for all of these from a configurable prefix
// (default "chat.chaperone").
//
// All records live in the room they apply to and travel exclusively
// through the protocol's state-event and account-data primitives —
// there is no local store.
package schema
