////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package model defines the domain entities held in the client replica:
// users, challenges with their actions, logged events, chat messages, and
// message reactions.
package model

import (
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// User is a participant. Users are fetched from the backing store and never
// mutated locally; the acting identity is selected client-side and persisted
// across sessions.
type User struct {
	ID     ID
	Name   string
	Avatar string
}

// Action is one point-earning activity belonging to a challenge.
type Action struct {
	ID          ID
	ChallengeID ID
	Name        string
	Points      int
	Icon        string
}

// Challenge groups an ordered set of actions. Read-only from the client's
// perspective.
type Challenge struct {
	ID      ID
	Name    string
	Actions []Action
}

// Event records one occurrence of a user performing an action.
type Event struct {
	ID          ID
	UserID      ID
	ActionID    ID
	ChallengeID ID
	CreatedAt   time.Time
}

// MessageKind represents the type of a chat message.
type MessageKind uint8

const (
	// Text is a plain chat message written by a user.
	Text MessageKind = iota

	// EventAnnouncement is a message generated when a user logs an event.
	EventAnnouncement
)

// String returns a human-readable version of [MessageKind], used for
// debugging, logging, and the wire format. This function adheres to the
// [fmt.Stringer] interface.
func (mk MessageKind) String() string {
	switch mk {
	case Text:
		return "text"
	case EventAnnouncement:
		return "event-announcement"
	default:
		return "Invalid MessageKind: " + strconv.Itoa(int(mk))
	}
}

// ParseMessageKind is the inverse of [MessageKind.String]. It is used when
// decoding rows received from the backing store.
func ParseMessageKind(s string) (MessageKind, error) {
	switch s {
	case "text":
		return Text, nil
	case "event-announcement":
		return EventAnnouncement, nil
	default:
		return 0, errors.Errorf("unknown message kind %q", s)
	}
}

// Reaction is a single user's emoji response on a message. At most one
// reaction exists per (message, user); re-reacting replaces or removes it.
type Reaction struct {
	UserID ID
	Emoji  string
}

// Message is a chat entry. ReplyTo is the zero ID when the message is not a
// reply.
type Message struct {
	ID        ID
	UserID    ID
	Text      string
	Kind      MessageKind
	CreatedAt time.Time
	ReplyTo   ID
	Reactions []Reaction
}
