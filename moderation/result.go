// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package moderation

import (
	"errors"
	"fmt"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/messaging"
)

// Code classifies why an action failed. Zero value means no failure.
type Code int

const (
	// CodeNone is the code of a successful result.
	CodeNone Code = iota

	// CodePermissionDenied means a local power-level precondition
	// failed, or the homeserver answered M_FORBIDDEN.
	CodePermissionDenied

	// CodeSelfTargetForbidden means the actor targeted themselves.
	CodeSelfTargetForbidden

	// CodeNotFound means the room, event, or target could not be
	// located, locally or via M_NOT_FOUND.
	CodeNotFound

	// CodeRemoteFailure covers every other remote error.
	CodeRemoteFailure
)

// String returns the wire name of the code.
func (code Code) String() string {
	switch code {
	case CodeNone:
		return "none"
	case CodePermissionDenied:
		return "permission_denied"
	case CodeSelfTargetForbidden:
		return "self_target_forbidden"
	case CodeNotFound:
		return "not_found"
	default:
		return "remote_failure"
	}
}

// ActionResult is the outcome of a single moderation action. Actions
// never return a bare error: local precondition failures and classified
// remote failures both land here, and callers branch on Success and
// Code without distinguishing where the rejection came from.
type ActionResult struct {
	Success bool   `json:"success"`
	Code    Code   `json:"-"`
	Error   string `json:"error,omitempty"`

	// Reason is a human-readable explanation of the outcome, set for
	// successes too (e.g. "own message" for a self-deletion).
	Reason string `json:"reason,omitempty"`

	// EventID is set by actions that produce an event, such as the
	// redaction event of a message deletion.
	EventID ref.EventID `json:"event_id,omitempty"`
}

func success(reason string) ActionResult {
	return ActionResult{Success: true, Reason: reason}
}

func failure(code Code, reason string) ActionResult {
	return ActionResult{Success: false, Code: code, Error: code.String(), Reason: reason}
}

// classifyRemote maps a remote error to a failed ActionResult:
// M_FORBIDDEN becomes CodePermissionDenied, M_NOT_FOUND becomes
// CodeNotFound, everything else is an opaque remote failure.
func classifyRemote(operation string, err error) ActionResult {
	var matrixErr *messaging.MatrixError
	if errors.As(err, &matrixErr) {
		switch matrixErr.Code {
		case messaging.ErrCodeForbidden:
			return failure(CodePermissionDenied, fmt.Sprintf("%s rejected by homeserver: %s", operation, matrixErr.Message))
		case messaging.ErrCodeNotFound:
			return failure(CodeNotFound, fmt.Sprintf("%s target not found: %s", operation, matrixErr.Message))
		}
	}
	return failure(CodeRemoteFailure, fmt.Sprintf("%s failed: %v", operation, err))
}

// BulkDeleteError records one failed item of a bulk deletion.
type BulkDeleteError struct {
	EventID ref.EventID `json:"event_id"`
	Error   string      `json:"error"`
}

// BulkDeleteResult aggregates a bulk deletion. Success is true only
// when every item succeeded; a mixed outcome is a result, not an error.
type BulkDeleteResult struct {
	Success      bool              `json:"success"`
	DeletedCount int               `json:"deleted_count"`
	FailedCount  int               `json:"failed_count"`
	Errors       []BulkDeleteError `json:"errors,omitempty"`
}
