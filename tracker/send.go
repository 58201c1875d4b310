////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package tracker

import (
	"context"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/tallyteam/tally/gateway"
	"gitlab.com/tallyteam/tally/model"
)

// AddEvent logs the acting user performing the action, right now. The
// tentative event and its companion announcement message are applied and
// announced to subscribers before the remote write starts; on success a
// full refetch replaces both tentative rows with the authoritative ones.
//
// The returned event carries the tentative ID. It remains valid as a
// replica reference only until the refetch lands.
func (m *Manager) AddEvent(
	ctx context.Context, actionID model.ID) (model.Event, error) {
	snap := m.store.Snapshot()

	if snap.CurrentUser.ID.IsZero() {
		return model.Event{}, ErrNoCurrentUser
	}
	action, ok := snap.Action(actionID)
	if !ok {
		return model.Event{}, ErrNotFound
	}

	now := netTime.Now()
	ev := model.Event{
		ID:          model.NewLocalID(),
		UserID:      snap.CurrentUser.ID,
		ActionID:    action.ID,
		ChallengeID: action.ChallengeID,
		CreatedAt:   now,
	}
	// The announcement text is the action name; the interface renders the
	// full sentence from the kind, the sender, and this text.
	ann := model.Message{
		ID:        model.NewLocalID(),
		UserID:    snap.CurrentUser.ID,
		Text:      action.Name,
		Kind:      model.EventAnnouncement,
		CreatedAt: now,
	}

	m.store.AddEvent(ev, &ann)

	if _, err := m.gw.InsertEvent(ctx, gateway.EncodeEvent(ev)); err != nil {
		m.store.RemoveEvent(ev.ID, ann.ID)
		return model.Event{}, errors.WithMessagef(
			gateway.ErrRemoteWriteFailed, "event insert: %s", err)
	}

	// The event is committed. A failed announcement insert is not rolled
	// back into a failure of the whole mutation; it is logged and the next
	// refetch converges on whatever the store holds.
	if _, err := m.gw.InsertMessage(
		ctx, gateway.EncodeMessage(ann)); err != nil {
		jww.WARN.Printf("Announcement insert for event %s failed: %+v",
			ev.ID, err)
	}

	// The gateway has no multi-row transactions, so the tentative rows are
	// replaced by a full refetch rather than per-row id substitution.
	if err := m.rec.refetch(ctx); err != nil {
		jww.WARN.Printf("Refetch after event insert failed, tentative "+
			"rows retained until the next notification: %+v", err)
	}

	return ev, nil
}

// AddEventManual logs a backdated event on behalf of any user, with a
// caller-supplied timestamp. No announcement message is generated. On
// success the tentative ID is substituted with the authoritative one
// returned by the insert.
func (m *Manager) AddEventManual(ctx context.Context, userID,
	actionID model.ID, createdAt time.Time) (model.Event, error) {
	snap := m.store.Snapshot()

	if _, ok := snap.User(userID); !ok {
		return model.Event{}, ErrNotFound
	}
	action, ok := snap.Action(actionID)
	if !ok {
		return model.Event{}, ErrNotFound
	}

	ev := model.Event{
		ID:          model.NewLocalID(),
		UserID:      userID,
		ActionID:    action.ID,
		ChallengeID: action.ChallengeID,
		CreatedAt:   createdAt,
	}

	m.store.AddEvent(ev, nil)

	row, err := m.gw.InsertEvent(ctx, gateway.EncodeEvent(ev))
	if err != nil {
		m.store.RemoveEvent(ev.ID, model.ID{})
		return model.Event{}, errors.WithMessagef(
			gateway.ErrRemoteWriteFailed, "event insert: %s", err)
	}

	confirmed := row.Decode()
	m.store.ConfirmEvent(ev.ID, confirmed)
	return confirmed, nil
}

// UpdateEvent replaces the stored fields of an existing event, typically to
// correct its action or timestamp. The prior values are restored if the
// backing store rejects the write.
func (m *Manager) UpdateEvent(ctx context.Context, ev model.Event) error {
	if ev.ID.IsLocal() {
		return ErrUnconfirmed
	}

	snap := m.store.Snapshot()
	prior, ok := snap.Event(ev.ID)
	if !ok {
		return ErrNotFound
	}

	m.store.PutEvent(ev)

	if err := m.gw.UpdateEvent(ctx, gateway.EncodeEvent(ev)); err != nil {
		m.store.PutEvent(prior)
		return errors.WithMessagef(
			gateway.ErrRemoteWriteFailed, "event update: %s", err)
	}

	return nil
}

// DeleteEvent removes an event. The row is restored if the backing store
// rejects the delete.
func (m *Manager) DeleteEvent(ctx context.Context, id model.ID) error {
	if id.IsLocal() {
		return ErrUnconfirmed
	}

	snap := m.store.Snapshot()
	prior, ok := snap.Event(id)
	if !ok {
		return ErrNotFound
	}

	m.store.RemoveEvent(id, model.ID{})

	if err := m.gw.DeleteEvent(ctx, id.Value()); err != nil {
		m.store.AddEvent(prior, nil)
		return errors.WithMessagef(
			gateway.ErrRemoteWriteFailed, "event delete: %s", err)
	}

	return nil
}

// AddMessage posts a chat message from the acting user. replyTo may be the
// zero ID. On success the tentative ID is substituted with the
// authoritative one returned by the insert.
func (m *Manager) AddMessage(ctx context.Context, text string,
	replyTo model.ID) (model.Message, error) {
	snap := m.store.Snapshot()

	if snap.CurrentUser.ID.IsZero() {
		return model.Message{}, ErrNoCurrentUser
	}
	if !replyTo.IsZero() {
		if _, ok := snap.Message(replyTo); !ok {
			return model.Message{}, ErrNotFound
		}
	}

	msg := model.Message{
		ID:        model.NewLocalID(),
		UserID:    snap.CurrentUser.ID,
		Text:      text,
		Kind:      model.Text,
		CreatedAt: netTime.Now(),
		ReplyTo:   replyTo,
	}

	m.store.AddMessage(msg)

	row, err := m.gw.InsertMessage(ctx, gateway.EncodeMessage(msg))
	if err != nil {
		m.store.RemoveMessage(msg.ID)
		return model.Message{}, errors.WithMessagef(
			gateway.ErrRemoteWriteFailed, "message insert: %s", err)
	}

	confirmed, err := row.Decode()
	if err != nil {
		// The write landed; only the returned row is unreadable. Keep the
		// tentative copy and let the next refetch converge.
		jww.WARN.Printf("Inserted message row undecodable: %+v", err)
		return msg, nil
	}

	m.store.ConfirmMessage(msg.ID, confirmed)
	return confirmed, nil
}
