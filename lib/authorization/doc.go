// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package authorization implements the permission model: named
// capabilities, their mapping to Matrix power-level thresholds, role
// templates, per-channel overrides, and the resolver that combines
// them into an effective allow/deny decision.
//
// Authority lives in two places. The Matrix power-levels state event is
// the enforced baseline: every capability with a protocol mapping
// reduces to "does the user's power level clear the mapped threshold".
// On top of that, channel permission records (room account data) carry
// per-role and per-user overrides that the resolver applies with strict
// precedence: user override, then role override, then the role-derived
// base check, then the literal power-level check.
//
// Nothing here caches. Resolvers read power levels and override records
// fresh on each decision; the backing store is the room itself.
package authorization
