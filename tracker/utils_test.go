////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package tracker

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/elixxir/ekv"

	"gitlab.com/tallyteam/tally/gateway"
	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/replica"
	"gitlab.com/tallyteam/tally/storage"
	"gitlab.com/tallyteam/tally/storage/versioned"
)

var errMockRejected = errors.New("mock gateway rejected the call")

// mockGateway is an in-memory backing store. Inserts become visible to
// subsequent fetches, so a refetch after a successful write observes the
// committed rows exactly like a real store.
type mockGateway struct {
	mux sync.Mutex

	users      []gateway.UserRow
	challenges []gateway.ChallengeRow
	events     []gateway.EventRow
	messages   []gateway.MessageRow

	nextID int

	failFetch           bool
	failInsertEvent     bool
	failUpdateEvent     bool
	failDeleteEvent     bool
	failInsertMessage   bool
	failUpdateReactions bool

	fetchCycles int

	callback func()
}

func (g *mockGateway) FetchUsers(context.Context) ([]gateway.UserRow, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	// Counted once per refetch cycle; users are always fetched first.
	g.fetchCycles++
	if g.failFetch {
		return nil, errMockRejected
	}
	return append([]gateway.UserRow{}, g.users...), nil
}

func (g *mockGateway) FetchChallenges(context.Context) (
	[]gateway.ChallengeRow, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failFetch {
		return nil, errMockRejected
	}
	return append([]gateway.ChallengeRow{}, g.challenges...), nil
}

func (g *mockGateway) FetchEvents(context.Context) ([]gateway.EventRow, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failFetch {
		return nil, errMockRejected
	}
	return append([]gateway.EventRow{}, g.events...), nil
}

func (g *mockGateway) FetchMessages(context.Context) (
	[]gateway.MessageRow, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failFetch {
		return nil, errMockRejected
	}
	return append([]gateway.MessageRow{}, g.messages...), nil
}

func (g *mockGateway) InsertEvent(_ context.Context, row gateway.EventRow) (
	gateway.EventRow, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failInsertEvent {
		return gateway.EventRow{}, errMockRejected
	}
	g.nextID++
	row.ID = "e" + strconv.Itoa(g.nextID)
	g.events = append(g.events, row)
	return row, nil
}

func (g *mockGateway) UpdateEvent(
	_ context.Context, row gateway.EventRow) error {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failUpdateEvent {
		return errMockRejected
	}
	for i := range g.events {
		if g.events[i].ID == row.ID {
			g.events[i] = row
			return nil
		}
	}
	return errMockRejected
}

func (g *mockGateway) DeleteEvent(_ context.Context, id string) error {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failDeleteEvent {
		return errMockRejected
	}
	for i := range g.events {
		if g.events[i].ID == id {
			g.events = append(g.events[:i], g.events[i+1:]...)
			return nil
		}
	}
	return errMockRejected
}

func (g *mockGateway) InsertMessage(_ context.Context,
	row gateway.MessageRow) (gateway.MessageRow, error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failInsertMessage {
		return gateway.MessageRow{}, errMockRejected
	}
	g.nextID++
	row.ID = "m" + strconv.Itoa(g.nextID)
	g.messages = append(g.messages, row)
	return row, nil
}

func (g *mockGateway) UpdateMessageReactions(_ context.Context,
	messageID string, reactions []gateway.ReactionRow) error {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.failUpdateReactions {
		return errMockRejected
	}
	for i := range g.messages {
		if g.messages[i].ID == messageID {
			g.messages[i].Reactions = reactions
			return nil
		}
	}
	return errMockRejected
}

func (g *mockGateway) SubscribeToChanges(callback func()) (func(), error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	g.callback = callback
	return func() {
		g.mux.Lock()
		defer g.mux.Unlock()
		g.callback = nil
	}, nil
}

// fire delivers one change notification, as the realtime stream would.
func (g *mockGateway) fire() {
	g.mux.Lock()
	cb := g.callback
	g.mux.Unlock()
	if cb != nil {
		cb()
	}
}

func (g *mockGateway) cycles() int {
	g.mux.Lock()
	defer g.mux.Unlock()
	return g.fetchCycles
}

// seed fills the store with two users, one challenge with two actions, and
// nothing else.
func (g *mockGateway) seed() {
	g.users = []gateway.UserRow{
		{ID: "u1", Name: "ana"},
		{ID: "u2", Name: "bo"},
	}
	g.challenges = []gateway.ChallengeRow{{
		ID:   "c1",
		Name: "spring cleaning",
		Actions: []gateway.ActionRow{
			{ID: "a1", ChallengeID: "c1", Name: "dishes", Points: 10},
			{ID: "a2", ChallengeID: "c1", Name: "vacuum", Points: 5},
		},
	}}
}

// newTestManager builds a manager over a seeded mock gateway, loads the
// replica, and selects u1 as the acting user. The reconciliation loop is
// not started; tests drive refetches explicitly.
func newTestManager(t *testing.T) (*Manager, *mockGateway) {
	t.Helper()

	gw := &mockGateway{}
	gw.seed()

	kv := versioned.NewKV(ekv.MakeMemstore())
	m := NewManager(replica.New(storage.New(kv)), gw, kv)

	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %+v", err)
	}
	if err := m.SwitchUser(model.RemoteID("u1")); err != nil {
		t.Fatalf("SwitchUser error: %+v", err)
	}

	return m, gw
}

// newBareManager builds a manager with a loaded replica but no acting user
// selected.
func newBareManager(t *testing.T, gw *mockGateway) *Manager {
	t.Helper()

	kv := versioned.NewKV(ekv.MakeMemstore())
	m := NewManager(replica.New(storage.New(kv)), gw, kv)
	if err := m.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %+v", err)
	}
	return m
}

// waitFor polls the condition for up to a second.
func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}
