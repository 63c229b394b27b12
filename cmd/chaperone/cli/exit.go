// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra
// error message. When a command returns an ExitError, main exits with
// the given code without printing the error string — the command has
// already written its own output.
//
// Used where a non-zero exit is a valid outcome rather than an
// unexpected error: a denied "resolve" check, or a moderation action
// that reported a structured failure the command already printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. Main checks this interface on
// returned errors to distinguish "handled non-zero exit" from
// "unexpected error to display".
func (e *ExitError) ExitCode() int {
	return e.Code
}
