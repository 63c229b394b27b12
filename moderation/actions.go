// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package moderation

import (
	"context"
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/schema"
)

// BanOptions configures a ban. Duration zero means permanent.
type BanOptions struct {
	Reason   string
	Duration time.Duration
}

// MuteOptions configures a mute. Duration zero means permanent.
type MuteOptions struct {
	Reason   string
	Duration time.Duration
}

// Kick removes the target from the room. Stateless: no sanction record
// is written, the user may rejoin immediately.
//
// Preconditions: actor is not the target; actor strictly outranks the
// target; actor clears the room's kick threshold. All checked before
// any remote call.
func (moderator *Moderator) Kick(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID, reason string) ActionResult {
	powerLevels, err := moderator.powerLevels(ctx, roomID)
	if err != nil {
		return classifyRemote("reading power levels", err)
	}
	if check := checkActorOverTarget(powerLevels, actor, target, powerLevels.KickLevel(), "kick"); !check.Success {
		return check
	}

	if err := moderator.session.KickUser(ctx, roomID, target, reason); err != nil {
		return classifyRemote("kick", err)
	}

	moderator.appendLog(ctx, roomID, schema.NewLogEntry(schema.ActionKick, actor, target, reason, moderator.clock.Now()))
	moderator.logger.Info("kicked user", "room_id", roomID, "actor", actor, "target", target)
	return success("kicked")
}

// Ban bans the target from the room. A timed ban additionally writes a
// ban record carrying the expiry, which the sweeper later reverses; a
// permanent ban writes no record.
func (moderator *Moderator) Ban(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID, options BanOptions) ActionResult {
	powerLevels, err := moderator.powerLevels(ctx, roomID)
	if err != nil {
		return classifyRemote("reading power levels", err)
	}
	if check := checkActorOverTarget(powerLevels, actor, target, powerLevels.BanLevel(), "ban"); !check.Success {
		return check
	}

	if err := moderator.session.BanUser(ctx, roomID, target, options.Reason); err != nil {
		return classifyRemote("ban", err)
	}

	now := moderator.clock.Now()
	if options.Duration > 0 {
		record := schema.NewBanRecord(actor, options.Reason, now, options.Duration)
		if err := moderator.writeBanRecord(ctx, roomID, target, record); err != nil {
			// The remote ban already happened; the missing record only
			// means the ban will not auto-expire.
			return classifyRemote("recording ban expiry", err)
		}
	}

	entry := schema.NewLogEntry(schema.ActionBan, actor, target, options.Reason, now)
	entry.DurationMs = options.Duration.Milliseconds()
	moderator.appendLog(ctx, roomID, entry)
	moderator.logger.Info("banned user",
		"room_id", roomID, "actor", actor, "target", target, "duration", options.Duration)
	return success("banned")
}

// Unban lifts a ban and clears any ban record. Only the ban threshold
// is checked: a banned user holds no meaningful power level to compare
// against.
func (moderator *Moderator) Unban(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID) ActionResult {
	powerLevels, err := moderator.powerLevels(ctx, roomID)
	if err != nil {
		return classifyRemote("reading power levels", err)
	}
	if check := checkActorThreshold(powerLevels, actor, powerLevels.BanLevel(), "unban"); !check.Success {
		return check
	}
	return moderator.liftBan(ctx, roomID, actor, target, false)
}

// liftBan performs the unban without precondition checks. The sweeper
// calls it directly: expiry is administrative, not an act of rank.
func (moderator *Moderator) liftBan(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID, automatic bool) ActionResult {
	if err := moderator.session.UnbanUser(ctx, roomID, target); err != nil {
		return classifyRemote("unban", err)
	}
	if err := moderator.clearBanRecord(ctx, roomID, target); err != nil {
		return classifyRemote("clearing ban record", err)
	}

	entry := schema.NewLogEntry(schema.ActionUnban, actor, target, "", moderator.clock.Now())
	entry.Automatic = automatic
	moderator.appendLog(ctx, roomID, entry)
	moderator.logger.Info("unbanned user",
		"room_id", roomID, "actor", actor, "target", target, "automatic", automatic)
	return success("unbanned")
}

// Mute silences the target by setting their power level to
// MutedPowerLevel, below the threshold of every permitted action. The
// pre-mute level is captured in the mute record so Unmute can restore
// it exactly.
//
// Preconditions match Kick, checked against the room's power-levels
// edit threshold since muting is a power-levels write.
func (moderator *Moderator) Mute(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID, options MuteOptions) ActionResult {
	powerLevels, err := moderator.powerLevels(ctx, roomID)
	if err != nil {
		return classifyRemote("reading power levels", err)
	}
	if check := checkActorOverTarget(powerLevels, actor, target, muteThreshold(powerLevels), "mute"); !check.Success {
		return check
	}

	originalLevel := powerLevels.UserLevel(target)
	powerLevels.SetUserLevel(target, MutedPowerLevel)
	if _, err := moderator.session.SendStateEvent(ctx, roomID, schema.MatrixEventTypePowerLevels, "", powerLevels); err != nil {
		return classifyRemote("setting muted power level", err)
	}

	now := moderator.clock.Now()
	record := schema.NewMuteRecord(actor, options.Reason, now, options.Duration, originalLevel)
	if err := moderator.writeMuteRecord(ctx, roomID, target, record); err != nil {
		return classifyRemote("recording mute", err)
	}

	entry := schema.NewLogEntry(schema.ActionMute, actor, target, options.Reason, now)
	entry.DurationMs = options.Duration.Milliseconds()
	moderator.appendLog(ctx, roomID, entry)
	moderator.logger.Info("muted user",
		"room_id", roomID, "actor", actor, "target", target,
		"original_level", originalLevel, "duration", options.Duration)
	return success("muted")
}

// Unmute restores the target's pre-mute power level and clears the mute
// record. A missing record restores to 0 rather than failing: a mute
// whose record was lost is still worth lifting.
func (moderator *Moderator) Unmute(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID) ActionResult {
	powerLevels, err := moderator.powerLevels(ctx, roomID)
	if err != nil {
		return classifyRemote("reading power levels", err)
	}
	if check := checkActorThreshold(powerLevels, actor, muteThreshold(powerLevels), "unmute"); !check.Success {
		return check
	}
	return moderator.liftMute(ctx, roomID, actor, target, powerLevels, false)
}

// liftMute performs the unmute without precondition checks, reusing an
// already-read power-levels document.
func (moderator *Moderator) liftMute(ctx context.Context, roomID ref.RoomID, actor, target ref.UserID, powerLevels *schema.PowerLevels, automatic bool) ActionResult {
	restoreLevel := 0
	record, err := moderator.muteRecord(ctx, roomID, target)
	if err != nil {
		return classifyRemote("reading mute record", err)
	}
	if record != nil {
		restoreLevel = record.OriginalPowerLevel
	}

	powerLevels.SetUserLevel(target, restoreLevel)
	if _, err := moderator.session.SendStateEvent(ctx, roomID, schema.MatrixEventTypePowerLevels, "", powerLevels); err != nil {
		return classifyRemote("restoring power level", err)
	}
	if err := moderator.clearMuteRecord(ctx, roomID, target); err != nil {
		return classifyRemote("clearing mute record", err)
	}

	entry := schema.NewLogEntry(schema.ActionUnmute, actor, target, "", moderator.clock.Now())
	entry.Automatic = automatic
	moderator.appendLog(ctx, roomID, entry)
	moderator.logger.Info("unmuted user",
		"room_id", roomID, "actor", actor, "target", target,
		"restored_level", restoreLevel, "automatic", automatic)
	return success("unmuted")
}

// DeleteMessage redacts a single message. Deleting one's own message is
// always allowed; deleting someone else's requires the room's redact
// threshold. On success EventID carries the redaction event.
func (moderator *Moderator) DeleteMessage(ctx context.Context, roomID ref.RoomID, actor ref.UserID, eventID ref.EventID, reason string) ActionResult {
	event, err := moderator.session.GetEvent(ctx, roomID, eventID)
	if err != nil {
		return classifyRemote("locating message", err)
	}

	resultReason := "own message"
	if event.Sender != actor {
		powerLevels, err := moderator.powerLevels(ctx, roomID)
		if err != nil {
			return classifyRemote("reading power levels", err)
		}
		actorLevel := powerLevels.UserLevel(actor)
		if actorLevel < powerLevels.RedactLevel() {
			return failure(CodePermissionDenied, "deleting another user's message requires moderator permission")
		}
		resultReason = "moderator permission"
	}

	redactionID, err := moderator.session.RedactEvent(ctx, roomID, eventID, reason)
	if err != nil {
		return classifyRemote("redact", err)
	}

	entry := schema.NewLogEntry(schema.ActionDeleteMessage, actor, event.Sender, reason, moderator.clock.Now())
	entry.EventID = eventID
	moderator.appendLog(ctx, roomID, entry)
	moderator.logger.Info("deleted message",
		"room_id", roomID, "actor", actor, "event_id", eventID, "sender", event.Sender)

	result := success(resultReason)
	result.EventID = redactionID
	return result
}

// BulkDeleteMessages applies DeleteMessage to each event independently.
// A failure on one item never stops the rest; the aggregate reports
// success only when every item succeeded.
func (moderator *Moderator) BulkDeleteMessages(ctx context.Context, roomID ref.RoomID, actor ref.UserID, eventIDs []ref.EventID, reason string) BulkDeleteResult {
	var result BulkDeleteResult
	for _, eventID := range eventIDs {
		item := moderator.DeleteMessage(ctx, roomID, actor, eventID, reason)
		if item.Success {
			result.DeletedCount++
			continue
		}
		result.FailedCount++
		result.Errors = append(result.Errors, BulkDeleteError{
			EventID: eventID,
			Error:   item.Reason,
		})
	}
	result.Success = result.FailedCount == 0
	return result
}
