// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package ref provides strongly typed, immutable Matrix identifier
// references: user IDs, room IDs, event IDs, and event types.
//
// All constructors validate their inputs and return errors for invalid
// identifiers. Once constructed, a ref is immutable — String returns
// the canonical Matrix form at zero allocation cost. Identifiers come
// from the homeserver (room creation, sync, event sends) or from
// operator input (CLI flags), and are parsed into these types at the
// boundary so that the rest of the code never handles raw strings.
//
// JSON marshaling uses the canonical Matrix form via
// encoding.TextMarshaler, so ref types can key moderation records
// directly (ban and mute records are keyed by target user ID).
package ref
