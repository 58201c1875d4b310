////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package gateway defines the boundary to the remote backing store: row
// based CRUD on the four domain collections plus a change-notification
// subscription. The core consumes this contract only; the store's own
// persistence and query engine live behind it.
package gateway

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrRemoteWriteFailed is returned when the backing store rejected a
	// write or the write could not be delivered. The caller's tentative
	// local change has been rolled back by the time this is surfaced.
	ErrRemoteWriteFailed = errors.New(
		"the backing store rejected the write")

	// ErrRemoteFetchFailed is returned when a collection fetch failed. The
	// prior replica contents are retained.
	ErrRemoteFetchFailed = errors.New(
		"fetching from the backing store failed")
)

// UserRow is the wire form of one user.
type UserRow struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ActionRow is the wire form of one point-earning action.
type ActionRow struct {
	ID          string `json:"id"`
	ChallengeID string `json:"challenge_id"`
	Name        string `json:"name"`
	Points      int    `json:"points"`
	Icon        string `json:"icon"`
}

// ChallengeRow is the wire form of one challenge with its nested actions.
type ChallengeRow struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Actions []ActionRow `json:"actions"`
}

// EventRow is the wire form of one logged event. ID is empty on insert; the
// backing store assigns it.
type EventRow struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ActionID    string    `json:"action_id"`
	ChallengeID string    `json:"challenge_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReactionRow is the wire form of one reaction on a message.
type ReactionRow struct {
	UserID string `json:"user_id"`
	Emoji  string `json:"emoji"`
}

// MessageRow is the wire form of one chat message. ReplyTo is empty when the
// message is not a reply.
type MessageRow struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Text      string        `json:"text"`
	Kind      string        `json:"kind"`
	CreatedAt time.Time     `json:"created_at"`
	ReplyTo   string        `json:"reply_to,omitempty"`
	Reactions []ReactionRow `json:"reactions"`
}

// Gateway is the request/response boundary to the backing store. All calls
// block until the store answers or the implementation's own timeout fires;
// any non-success result, including a timeout, is reported as a write or
// fetch failure.
type Gateway interface {
	FetchUsers(ctx context.Context) ([]UserRow, error)
	FetchChallenges(ctx context.Context) ([]ChallengeRow, error)
	FetchEvents(ctx context.Context) ([]EventRow, error)
	FetchMessages(ctx context.Context) ([]MessageRow, error)

	// InsertEvent writes a new event and returns it with the authoritative
	// ID filled in.
	InsertEvent(ctx context.Context, row EventRow) (EventRow, error)
	UpdateEvent(ctx context.Context, row EventRow) error
	DeleteEvent(ctx context.Context, id string) error

	// InsertMessage writes a new message and returns it with the
	// authoritative ID filled in.
	InsertMessage(ctx context.Context, row MessageRow) (MessageRow, error)

	// UpdateMessageReactions replaces the full reaction array of the
	// message in one row-level write. Last writer wins.
	UpdateMessageReactions(
		ctx context.Context, messageID string, reactions []ReactionRow) error

	// SubscribeToChanges registers a callback fired whenever anything in
	// the schema changes. No payload is guaranteed beyond "something
	// changed somewhere". The returned function cancels the subscription.
	SubscribeToChanges(callback func()) (unsubscribe func(), err error)
}
