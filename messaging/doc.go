// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

// Package messaging wraps the Matrix client-server API for Chaperone's
// moderation and state management needs.
//
// The package provides two core types. [Client] is an unauthenticated
// Matrix client that handles login, returning authenticated
// [DirectSession] values. Client holds the homeserver URL and HTTP
// transport, shared across all sessions derived from it.
//
// [DirectSession] wraps a Client with an access token for authenticated
// operations: membership moderation (kick, ban, unban), event redaction,
// single event lookup, state events (get/set individual events, full
// room state), per-room account data, room members, message sending,
// and identity verification (WhoAmI). [Session] is the narrow interface
// the moderation core consumes — everything it needs from the transport
// and nothing more, so tests can substitute an httptest-backed session
// or a scripted fake.
//
// All API errors are returned as [*MatrixError] with the standard
// Matrix error code (M_FORBIDDEN, M_NOT_FOUND, etc.) and HTTP status
// code. [IsMatrixError] tests for a specific error code. Request URLs
// are built by string concatenation rather than url.URL to avoid
// double-encoding of path segments that contain URL-encoded characters.
//
// No retry or backoff happens at this layer: each method is a single
// round trip, and the moderation core reads state fresh on every check
// rather than caching.
package messaging
