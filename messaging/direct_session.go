// Copyright 2026 The Chaperone Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/chaperone-chat/chaperone/lib/ref"
	"github.com/chaperone-chat/chaperone/lib/secret"
)

// DirectSession is an authenticated Matrix session.
// It wraps a Client with an access token for making authenticated API calls.
// DirectSessions are lightweight and safe to create in large numbers.
//
// The access token is stored in a secret.Buffer (mmap-backed, locked against
// swap, excluded from core dumps). The caller must call Close when the
// DirectSession is no longer needed.
type DirectSession struct {
	client      *Client
	accessToken *secret.Buffer
	userID      ref.UserID
	deviceID    string

	// transactionCounter generates unique transaction IDs for idempotent sends.
	transactionCounter atomic.Int64
}

// UserID returns the fully-qualified Matrix user ID (e.g., "@mod:chaperone.chat").
func (s *DirectSession) UserID() ref.UserID {
	return s.userID
}

// DeviceID returns the device ID for this session.
func (s *DirectSession) DeviceID() string {
	return s.deviceID
}

// AccessToken returns the session's access token as a string. Used by
// the login command to persist the token; keep the result's lifetime
// short.
func (s *DirectSession) AccessToken() string {
	return s.accessToken.String()
}

// Close releases the access token memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (s *DirectSession) Close() error {
	if s.accessToken != nil {
		return s.accessToken.Close()
	}
	return nil
}

// WhoAmI validates the access token and returns the user ID.
// Useful for checking whether a stored token is still valid.
func (s *DirectSession) WhoAmI(ctx context.Context) (ref.UserID, error) {
	body, err := s.client.doRequest(ctx, http.MethodGet, "/_matrix/client/v3/account/whoami", s.accessToken, nil)
	if err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: whoami failed: %w", err)
	}

	var response WhoAmIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.UserID{}, fmt.Errorf("messaging: failed to parse whoami response: %w", err)
	}
	return response.UserID, nil
}

// SendMessage sends a message to a room. Returns the event ID of the
// sent message.
func (s *DirectSession) SendMessage(ctx context.Context, roomID ref.RoomID, content MessageContent) (ref.EventID, error) {
	return s.SendEvent(ctx, roomID, "m.room.message", content)
}

// SendEvent sends an event of any type to a room.
// Uses Matrix's idempotent PUT with a transaction ID.
// Returns the event ID.
func (s *DirectSession) SendEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, content any) (ref.EventID, error) {
	transactionID := s.nextTransactionID()
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/send/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventType.String()),
		url.PathEscape(transactionID),
	)

	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content)
	if err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: send event to %q failed: %w", roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: failed to parse send response: %w", err)
	}
	return response.EventID, nil
}

// SendStateEvent sends a state event to a room.
// State events use PUT with the event type and state key in the path.
// Returns the event ID.
func (s *DirectSession) SendStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string, content any) (ref.EventID, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventType.String()),
		url.PathEscape(stateKey),
	)

	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content)
	if err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: send state event to %q failed: %w", roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: failed to parse send state response: %w", err)
	}
	return response.EventID, nil
}

// GetStateEvent fetches a specific state event's content from a room.
// Returns the raw JSON content — the caller is responsible for
// unmarshaling into the appropriate type (e.g., schema.PowerLevels).
//
// If the state event does not exist, returns a *MatrixError with code
// M_NOT_FOUND.
func (s *DirectSession) GetStateEvent(ctx context.Context, roomID ref.RoomID, eventType ref.EventType, stateKey string) (json.RawMessage, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventType.String()),
		url.PathEscape(stateKey),
	)

	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get state event %s/%s in %q failed: %w", eventType, stateKey, roomID, err)
	}
	return json.RawMessage(body), nil
}

// GetRoomState fetches all current state events from a room.
// Returns the full event objects including type, state_key, sender, etc.
func (s *DirectSession) GetRoomState(ctx context.Context, roomID ref.RoomID) ([]Event, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/state", url.PathEscape(roomID.String()))

	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room state for %q failed: %w", roomID, err)
	}

	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse room state response: %w", err)
	}
	return events, nil
}

// GetEvent fetches a single event from a room by its event ID. Used by
// message deletion to discover the sender before the permission check.
//
// If the event does not exist in the room (or the server has forgotten
// it), returns a *MatrixError with code M_NOT_FOUND.
func (s *DirectSession) GetEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID) (*Event, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/event/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventID.String()),
	)

	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get event %q in %q failed: %w", eventID, roomID, err)
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse event response: %w", err)
	}
	return &event, nil
}

// RoomMessages fetches messages from a room with pagination.
func (s *DirectSession) RoomMessages(ctx context.Context, roomID ref.RoomID, options RoomMessagesOptions) (*RoomMessagesResponse, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/messages", url.PathEscape(roomID.String()))

	query := url.Values{}
	if options.From != "" {
		query.Set("from", options.From)
	}
	direction := options.Direction
	if direction == "" {
		direction = "b" // backward (newest first) by default
	}
	query.Set("dir", direction)
	if options.Limit > 0 {
		query.Set("limit", strconv.Itoa(options.Limit))
	}

	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil, query)
	if err != nil {
		return nil, fmt.Errorf("messaging: room messages for %q failed: %w", roomID, err)
	}

	var response RoomMessagesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse messages response: %w", err)
	}
	return &response, nil
}

// GetRoomMembers returns the members of a room.
func (s *DirectSession) GetRoomMembers(ctx context.Context, roomID ref.RoomID) ([]RoomMember, error) {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/members", url.PathEscape(roomID.String()))
	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room members for %q failed: %w", roomID, err)
	}

	var response RoomMembersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("messaging: failed to parse room members response: %w", err)
	}

	members := make([]RoomMember, len(response.Chunk))
	for index, event := range response.Chunk {
		members[index] = RoomMember{
			UserID:      event.StateKey,
			DisplayName: event.Content.DisplayName,
			Membership:  event.Content.Membership,
			AvatarURL:   event.Content.AvatarURL,
		}
	}
	return members, nil
}

// KickUser removes a user from a room with an optional reason. The user
// can rejoin (or be re-invited) afterward — kick does not blocklist.
func (s *DirectSession) KickUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID, reason string) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/kick", url.PathEscape(roomID.String()))
	_, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, MembershipRequest{
		UserID: userID,
		Reason: reason,
	})
	if err != nil {
		return fmt.Errorf("messaging: kick %q from %q failed: %w", userID, roomID, err)
	}
	return nil
}

// BanUser bans a user from a room with an optional reason. A banned user
// is removed and cannot rejoin until unbanned.
func (s *DirectSession) BanUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID, reason string) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/ban", url.PathEscape(roomID.String()))
	_, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, MembershipRequest{
		UserID: userID,
		Reason: reason,
	})
	if err != nil {
		return fmt.Errorf("messaging: ban %q in %q failed: %w", userID, roomID, err)
	}
	s.client.logger.Info("banned user", "room_id", roomID, "user_id", userID)
	return nil
}

// UnbanUser lifts a ban, allowing the user to join the room again.
// Does not re-invite or rejoin the user.
func (s *DirectSession) UnbanUser(ctx context.Context, roomID ref.RoomID, userID ref.UserID) error {
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/unban", url.PathEscape(roomID.String()))
	_, err := s.client.doRequest(ctx, http.MethodPost, path, s.accessToken, MembershipRequest{
		UserID: userID,
	})
	if err != nil {
		return fmt.Errorf("messaging: unban %q in %q failed: %w", userID, roomID, err)
	}
	s.client.logger.Info("unbanned user", "room_id", roomID, "user_id", userID)
	return nil
}

// RedactEvent strips an event of its content (deletes a message).
// Uses Matrix's idempotent PUT with a transaction ID.
// Returns the event ID of the redaction event.
func (s *DirectSession) RedactEvent(ctx context.Context, roomID ref.RoomID, eventID ref.EventID, reason string) (ref.EventID, error) {
	transactionID := s.nextTransactionID()
	path := fmt.Sprintf("/_matrix/client/v3/rooms/%s/redact/%s/%s",
		url.PathEscape(roomID.String()),
		url.PathEscape(eventID.String()),
		url.PathEscape(transactionID),
	)

	body, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, RedactRequest{Reason: reason})
	if err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: redact %q in %q failed: %w", eventID, roomID, err)
	}

	var response SendEventResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return ref.EventID{}, fmt.Errorf("messaging: failed to parse redact response: %w", err)
	}
	return response.EventID, nil
}

// GetRoomAccountData fetches a per-room account data blob for the
// session's user. Returns the raw JSON content for the caller to
// unmarshal.
//
// If the account data has never been written, returns a *MatrixError
// with code M_NOT_FOUND.
func (s *DirectSession) GetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType) (json.RawMessage, error) {
	path := fmt.Sprintf("/_matrix/client/v3/user/%s/rooms/%s/account_data/%s",
		url.PathEscape(s.userID.String()),
		url.PathEscape(roomID.String()),
		url.PathEscape(dataType.String()),
	)

	body, err := s.client.doRequest(ctx, http.MethodGet, path, s.accessToken, nil)
	if err != nil {
		return nil, fmt.Errorf("messaging: get room account data %s in %q failed: %w", dataType, roomID, err)
	}
	return json.RawMessage(body), nil
}

// SetRoomAccountData writes a per-room account data blob for the
// session's user. The write replaces the whole document — there is no
// partial update primitive.
func (s *DirectSession) SetRoomAccountData(ctx context.Context, roomID ref.RoomID, dataType ref.EventType, content any) error {
	path := fmt.Sprintf("/_matrix/client/v3/user/%s/rooms/%s/account_data/%s",
		url.PathEscape(s.userID.String()),
		url.PathEscape(roomID.String()),
		url.PathEscape(dataType.String()),
	)

	_, err := s.client.doRequest(ctx, http.MethodPut, path, s.accessToken, content)
	if err != nil {
		return fmt.Errorf("messaging: set room account data %s in %q failed: %w", dataType, roomID, err)
	}
	return nil
}

// nextTransactionID generates a unique transaction ID for idempotent
// event sending. Format: "chaperone-<timestamp_ms>-<counter>" to ensure
// uniqueness across restarts.
func (s *DirectSession) nextTransactionID() string {
	counter := s.transactionCounter.Add(1)
	return fmt.Sprintf("chaperone-%d-%d", time.Now().UnixMilli(), counter)
}
