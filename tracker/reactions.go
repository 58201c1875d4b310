////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package tracker

import (
	"context"

	"github.com/pkg/errors"

	"gitlab.com/tallyteam/tally/emoji"
	"gitlab.com/tallyteam/tally/gateway"
	"gitlab.com/tallyteam/tally/model"
)

// AddReaction toggles the acting user's reaction on a message:
//   - no prior reaction: the emoji is added;
//   - same emoji already set: the reaction is removed;
//   - different emoji set: the emoji is replaced in place.
//
// The full reaction array is written back as one row-level replacement.
// Two clients reacting at the same moment race on that row and the later
// write wins; this is an accepted trade-off of the row-granular store.
func (m *Manager) AddReaction(
	ctx context.Context, messageID model.ID, reaction string) error {
	if err := emoji.ValidateReaction(reaction); err != nil {
		return err
	}

	snap := m.store.Snapshot()
	if snap.CurrentUser.ID.IsZero() {
		return ErrNoCurrentUser
	}
	msg, ok := snap.Message(messageID)
	if !ok {
		return ErrNotFound
	}
	if messageID.IsLocal() {
		return ErrUnconfirmed
	}

	prior := msg.Reactions
	next, removed := toggleReaction(prior, snap.CurrentUser.ID, reaction)

	if !m.store.SetMessageReactions(messageID, next) {
		return ErrNotFound
	}

	err := m.gw.UpdateMessageReactions(
		ctx, messageID.Value(), gateway.EncodeReactions(next))
	if err != nil {
		m.store.SetMessageReactions(messageID, prior)
		return errors.WithMessagef(
			gateway.ErrRemoteWriteFailed, "reaction update: %s", err)
	}

	if !removed {
		m.recent.Add(reaction)
	}
	return nil
}

// toggleReaction computes the new reaction array for one user's toggle. At
// most one reaction per (message, user) is kept: a repeat of the same emoji
// removes it, a different emoji replaces it in place, otherwise the emoji is
// appended. The input slice is never modified.
func toggleReaction(reactions []model.Reaction, userID model.ID,
	emoji string) (next []model.Reaction, removed bool) {
	for i, r := range reactions {
		if r.UserID != userID {
			continue
		}

		if r.Emoji == emoji {
			// Same emoji: remove.
			next = make([]model.Reaction, 0, len(reactions)-1)
			next = append(next, reactions[:i]...)
			next = append(next, reactions[i+1:]...)
			return next, true
		}

		// Different emoji: replace in place.
		next = make([]model.Reaction, len(reactions))
		copy(next, reactions)
		next[i].Emoji = emoji
		return next, false
	}

	next = make([]model.Reaction, 0, len(reactions)+1)
	next = append(next, reactions...)
	next = append(next, model.Reaction{UserID: userID, Emoji: emoji})
	return next, false
}
