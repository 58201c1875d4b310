////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package replica owns the canonical local snapshot of all remote domain
// collections plus the session-local fields. It is the only shared mutable
// state in the client; every change goes through one of the Store's methods
// and triggers exactly one subscriber notification after the state is fully
// updated. Collections are swapped wholesale on refetch, never merged, so a
// stale tentative row can never be resurrected.
package replica

import (
	"sync"

	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/storage"
)

// Listener receives the snapshot produced by a mutation. Listeners are
// called synchronously in registration order; they must not mutate the
// snapshot.
type Listener func(model.Snapshot)

type registeredListener struct {
	id uint64
	fn Listener
}

// Store is the single in-memory replica.
type Store struct {
	mux sync.RWMutex

	users      []model.User
	challenges []model.Challenge
	events     []model.Event
	messages   []model.Message

	currentUser model.ID

	session *storage.Session

	listeners  []registeredListener
	listenerID uint64
}

// New creates a Store bound to the given session store. The persisted acting
// identity, language, and preferences are picked up immediately; domain
// collections start empty until the first reconciliation fetch.
func New(session *storage.Session) *Store {
	s := &Store{session: session}
	if id, exists := session.GetCurrentUser(); exists {
		s.currentUser = id
	}
	return s
}

// Snapshot returns the current replica. Callers must treat it as read-only;
// the collection slices are shared with the store until the next wholesale
// replace.
func (s *Store) Snapshot() model.Snapshot {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.snapshotUnsafe()
}

func (s *Store) snapshotUnsafe() model.Snapshot {
	snap := model.Snapshot{
		Users:       s.users,
		Challenges:  s.challenges,
		Events:      s.events,
		Messages:    s.messages,
		Language:    s.session.GetLanguage(),
		Preferences: s.session.Preferences(),
	}

	if !s.currentUser.IsZero() {
		if u, ok := snap.User(s.currentUser); ok {
			snap.CurrentUser = u
		} else {
			// The user row has not arrived yet; expose the bare ID so
			// the interface can still attribute pending writes.
			snap.CurrentUser = model.User{ID: s.currentUser}
		}
	}

	return snap
}

// Subscribe registers a listener invoked after every mutation. The returned
// function unregisters it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mux.Lock()
	s.listenerID++
	id := s.listenerID
	s.listeners = append(s.listeners, registeredListener{id: id, fn: fn})
	s.mux.Unlock()

	return func() {
		s.mux.Lock()
		defer s.mux.Unlock()
		for i, reg := range s.listeners {
			if reg.id == id {
				s.listeners = append(
					s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notifyUnsafe snapshots the state and the listener list under the held
// write lock, then releases it and delivers. Delivery happens outside the
// lock so listeners can call Snapshot without deadlocking; the snapshot they
// receive is the one their mutation produced.
func (s *Store) notifyUnsafe() {
	snap := s.snapshotUnsafe()
	regs := make([]registeredListener, len(s.listeners))
	copy(regs, s.listeners)
	s.mux.Unlock()

	for _, reg := range regs {
		reg.fn(snap)
	}
}

// ReplaceAll atomically swaps any subset of the four domain collections. A
// nil pointer leaves that collection untouched; a pointer to an empty slice
// empties it. Used exclusively by the reconciliation refetch, which always
// replaces wholesale.
func (s *Store) ReplaceAll(users *[]model.User, challenges *[]model.Challenge,
	events *[]model.Event, messages *[]model.Message) {
	s.mux.Lock()

	if users != nil {
		s.users = *users
	}
	if challenges != nil {
		s.challenges = *challenges
	}
	if events != nil {
		s.events = *events
	}
	if messages != nil {
		s.messages = *messages
	}

	s.notifyUnsafe()
}

// AddEvent appends a tentative or authoritative event. The optional
// announcement message is applied in the same mutation so subscribers see
// both rows in a single consistent snapshot.
func (s *Store) AddEvent(ev model.Event, announcement *model.Message) {
	s.mux.Lock()

	s.events = append(copyEvents(s.events), ev)
	if announcement != nil {
		s.messages = append(copyMessages(s.messages), *announcement)
	}

	s.notifyUnsafe()
}

// RemoveEvent deletes the event and, if announcementID is not zero, its
// companion announcement message in one mutation. Missing rows are skipped.
func (s *Store) RemoveEvent(eventID, announcementID model.ID) {
	s.mux.Lock()

	events := make([]model.Event, 0, len(s.events))
	for _, e := range s.events {
		if e.ID != eventID {
			events = append(events, e)
		}
	}
	s.events = events

	if !announcementID.IsZero() {
		messages := make([]model.Message, 0, len(s.messages))
		for _, m := range s.messages {
			if m.ID != announcementID {
				messages = append(messages, m)
			}
		}
		s.messages = messages
	}

	s.notifyUnsafe()
}

// PutEvent replaces the event with the same ID, or appends it if absent.
// Used to apply a tentative update and to restore the prior values on
// rollback.
func (s *Store) PutEvent(ev model.Event) {
	s.mux.Lock()

	events := copyEvents(s.events)
	replaced := false
	for i := range events {
		if events[i].ID == ev.ID {
			events[i] = ev
			replaced = true
			break
		}
	}
	if !replaced {
		events = append(events, ev)
	}
	s.events = events

	s.notifyUnsafe()
}

// ConfirmEvent substitutes the tentative event with the authoritative copy
// returned by the backing store. If the tentative row has already been
// dropped by a refetch that captured the committed row, this is a no-op and
// no notification fires.
func (s *Store) ConfirmEvent(tempID model.ID, ev model.Event) {
	s.mux.Lock()

	for i := range s.events {
		if s.events[i].ID == tempID {
			events := copyEvents(s.events)
			events[i] = ev
			s.events = events
			s.notifyUnsafe()
			return
		}
	}

	jww.DEBUG.Printf("ConfirmEvent: tentative %s already replaced "+
		"by a refetch", tempID)
	s.mux.Unlock()
}

// AddMessage appends a tentative or authoritative message.
func (s *Store) AddMessage(m model.Message) {
	s.mux.Lock()
	s.messages = append(copyMessages(s.messages), m)
	s.notifyUnsafe()
}

// RemoveMessage deletes the message. A missing row is skipped.
func (s *Store) RemoveMessage(id model.ID) {
	s.mux.Lock()

	messages := make([]model.Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.ID != id {
			messages = append(messages, m)
		}
	}
	s.messages = messages

	s.notifyUnsafe()
}

// ConfirmMessage substitutes the tentative message with the authoritative
// copy returned by the backing store. If the tentative row has already been
// dropped by a refetch that captured the committed row, this is a no-op and
// no notification fires.
func (s *Store) ConfirmMessage(tempID model.ID, m model.Message) {
	s.mux.Lock()

	for i := range s.messages {
		if s.messages[i].ID == tempID {
			messages := copyMessages(s.messages)
			messages[i] = m
			s.messages = messages
			s.notifyUnsafe()
			return
		}
	}

	jww.DEBUG.Printf("ConfirmMessage: tentative %s already replaced "+
		"by a refetch", tempID)
	s.mux.Unlock()
}

// SetMessageReactions replaces the reaction array of the message. Returns
// false, without notifying, if the message is absent.
func (s *Store) SetMessageReactions(
	id model.ID, reactions []model.Reaction) bool {
	s.mux.Lock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			messages := copyMessages(s.messages)
			messages[i].Reactions = reactions
			s.messages = messages
			s.notifyUnsafe()
			return true
		}
	}

	s.mux.Unlock()
	return false
}

// SetCurrentUser switches the acting identity and persists it. The
// in-memory switch happens and subscribers are notified even if persistence
// fails; the error is returned so the interface can surface it.
func (s *Store) SetCurrentUser(u model.User) error {
	s.mux.Lock()
	s.currentUser = u.ID
	err := s.session.SetCurrentUser(u.ID)
	s.notifyUnsafe()
	return err
}

// SetLanguage updates and persists the interface language.
func (s *Store) SetLanguage(code string) error {
	s.mux.Lock()
	err := s.session.SetLanguage(code)
	s.notifyUnsafe()
	return err
}

// SetPreference updates and persists one display preference.
func (s *Store) SetPreference(key, value string) error {
	s.mux.Lock()
	err := s.session.SetPreference(key, value)
	s.notifyUnsafe()
	return err
}

// The collection slices are handed out by Snapshot, so mutations work on a
// copy rather than appending in place.
func copyEvents(in []model.Event) []model.Event {
	out := make([]model.Event, len(in))
	copy(out, in)
	return out
}

func copyMessages(in []model.Message) []model.Message {
	out := make([]model.Message, len(in))
	copy(out, in)
	return out
}
