////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package gateway

import (
	"github.com/pkg/errors"

	"gitlab.com/tallyteam/tally/model"
)

// Decode converts the wire row into a replica entity.
func (r UserRow) Decode() model.User {
	return model.User{
		ID:     model.RemoteID(r.ID),
		Name:   r.Name,
		Avatar: r.Avatar,
	}
}

// Decode converts the wire row into a replica entity.
func (r ActionRow) Decode() model.Action {
	return model.Action{
		ID:          model.RemoteID(r.ID),
		ChallengeID: model.RemoteID(r.ChallengeID),
		Name:        r.Name,
		Points:      r.Points,
		Icon:        r.Icon,
	}
}

// Decode converts the wire row into a replica entity.
func (r ChallengeRow) Decode() model.Challenge {
	actions := make([]model.Action, len(r.Actions))
	for i, a := range r.Actions {
		actions[i] = a.Decode()
	}
	return model.Challenge{
		ID:      model.RemoteID(r.ID),
		Name:    r.Name,
		Actions: actions,
	}
}

// Decode converts the wire row into a replica entity.
func (r EventRow) Decode() model.Event {
	return model.Event{
		ID:          model.RemoteID(r.ID),
		UserID:      model.RemoteID(r.UserID),
		ActionID:    model.RemoteID(r.ActionID),
		ChallengeID: model.RemoteID(r.ChallengeID),
		CreatedAt:   r.CreatedAt,
	}
}

// Decode converts the wire row into a replica entity. It fails on an
// unknown message kind.
func (r MessageRow) Decode() (model.Message, error) {
	kind, err := model.ParseMessageKind(r.Kind)
	if err != nil {
		return model.Message{}, errors.WithMessagef(
			err, "Failed to decode message %s", r.ID)
	}

	var replyTo model.ID
	if r.ReplyTo != "" {
		replyTo = model.RemoteID(r.ReplyTo)
	}

	reactions := make([]model.Reaction, len(r.Reactions))
	for i, re := range r.Reactions {
		reactions[i] = model.Reaction{
			UserID: model.RemoteID(re.UserID),
			Emoji:  re.Emoji,
		}
	}

	return model.Message{
		ID:        model.RemoteID(r.ID),
		UserID:    model.RemoteID(r.UserID),
		Text:      r.Text,
		Kind:      kind,
		CreatedAt: r.CreatedAt,
		ReplyTo:   replyTo,
		Reactions: reactions,
	}, nil
}

// EncodeEvent converts a replica event into its wire row. A tentative local
// ID is not sent; the backing store assigns the authoritative one.
func EncodeEvent(e model.Event) EventRow {
	row := EventRow{
		UserID:      e.UserID.Value(),
		ActionID:    e.ActionID.Value(),
		ChallengeID: e.ChallengeID.Value(),
		CreatedAt:   e.CreatedAt,
	}
	if !e.ID.IsLocal() {
		row.ID = e.ID.Value()
	}
	return row
}

// EncodeMessage converts a replica message into its wire row. A tentative
// local ID is not sent; the backing store assigns the authoritative one.
func EncodeMessage(m model.Message) MessageRow {
	row := MessageRow{
		UserID:    m.UserID.Value(),
		Text:      m.Text,
		Kind:      m.Kind.String(),
		CreatedAt: m.CreatedAt,
		Reactions: EncodeReactions(m.Reactions),
	}
	if !m.ID.IsLocal() {
		row.ID = m.ID.Value()
	}
	if !m.ReplyTo.IsZero() {
		row.ReplyTo = m.ReplyTo.Value()
	}
	return row
}

// EncodeReactions converts a reaction list into its wire form, used for the
// row-level replacement write.
func EncodeReactions(reactions []model.Reaction) []ReactionRow {
	rows := make([]ReactionRow, len(reactions))
	for i, r := range reactions {
		rows[i] = ReactionRow{UserID: r.UserID.Value(), Emoji: r.Emoji}
	}
	return rows
}
