// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/chaperone-chat/chaperone/lib/clock"
	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
	"github.com/chaperone-chat/chaperone/messaging"
)

// MutedPowerLevel is the sentinel level a muted user is set to. Below
// zero, so it sits under every permitted action including the default
// message threshold.
const MutedPowerLevel = -1

// Moderator executes moderation actions through a Matrix session. It
// holds no room state: power levels and sanction records are read
// fresh from the room on every action. The only local state is the
// counter that disambiguates audit log IDs minted in the same
// millisecond.
type Moderator struct {
	session    messaging.Session
	namespace  schema.Namespace
	clock      clock.Clock
	logger     *slog.Logger
	logCounter atomic.Int64
}

// NewModerator returns a Moderator acting through the given session.
// The clock is injectable so expiry behavior is testable; pass
// clock.Real() in production.
func NewModerator(session messaging.Session, namespace schema.Namespace, clk clock.Clock, logger *slog.Logger) *Moderator {
	return &Moderator{
		session:   session,
		namespace: namespace,
		clock:     clk,
		logger:    logger,
	}
}

// powerLevels reads the room's current power-levels document. A room
// with no power-levels event yields an empty document, which resolves
// everything to protocol defaults.
func (moderator *Moderator) powerLevels(ctx context.Context, roomID ref.RoomID) (*schema.PowerLevels, error) {
	powerLevels, err := schema.GetPowerLevels(ctx, moderator.session, roomID)
	if err != nil {
		if messaging.IsMatrixError(err, messaging.ErrCodeNotFound) {
			return &schema.PowerLevels{}, nil
		}
		return nil, err
	}
	return powerLevels, nil
}

// checkActorOverTarget enforces the shared preconditions of kick, ban,
// and mute: the actor may not target themselves, must strictly outrank
// the target (equal levels are forbidden), and must clear the action's
// threshold. Returns a zero-Code result when all checks pass.
func checkActorOverTarget(powerLevels *schema.PowerLevels, actor, target ref.UserID, threshold int, action string) ActionResult {
	if actor == target {
		return failure(CodeSelfTargetForbidden, fmt.Sprintf("cannot %s yourself", action))
	}

	actorLevel := powerLevels.UserLevel(actor)
	targetLevel := powerLevels.UserLevel(target)
	if actorLevel <= targetLevel {
		return failure(CodePermissionDenied, fmt.Sprintf(
			"cannot %s a user at power level %d from level %d: actor must strictly outrank target",
			action, targetLevel, actorLevel))
	}
	if actorLevel < threshold {
		return failure(CodePermissionDenied, fmt.Sprintf(
			"%s requires power level %d, actor has %d", action, threshold, actorLevel))
	}
	return ActionResult{Success: true}
}

// checkActorThreshold enforces the preconditions of unban and unmute:
// only the threshold matters, since the target has no meaningful power
// level to compare against.
func checkActorThreshold(powerLevels *schema.PowerLevels, actor ref.UserID, threshold int, action string) ActionResult {
	actorLevel := powerLevels.UserLevel(actor)
	if actorLevel < threshold {
		return failure(CodePermissionDenied, fmt.Sprintf(
			"%s requires power level %d, actor has %d", action, threshold, actorLevel))
	}
	return ActionResult{Success: true}
}

// muteThreshold is the level required to mute: muting is a power-levels
// edit, so the threshold is whatever the room demands for the
// power-levels state event.
func muteThreshold(powerLevels *schema.PowerLevels) int {
	return powerLevels.EventLevel(schema.MatrixEventTypePowerLevels, true)
}
