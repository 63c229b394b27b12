// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package moderation executes moderation actions against a room: kick,
// ban, unban, mute, unmute, and message deletion, plus the expiry
// sweeper that reverses timed bans and mutes and the audit log that
// records every state-changing action.
//
// Every action follows the same shape: local preconditions are checked
// against freshly read power levels, the remote primitive is invoked
// through the session, and the outcome is reported as an ActionResult.
// Nothing panics or returns a bare error past the action boundary;
// remote Matrix errors are classified into the same result codes the
// local checks use, so callers handle one shape.
//
// State lives in the room. Mute and ban records are namespaced state
// events keyed by the target user, and each audit log entry is its own
// namespaced state event keyed by a unique log ID, written once and
// never rewritten. There is no local store and no cache; concurrent
// moderators race on last-write-wins terms, which is what the backing
// store provides.
package moderation
