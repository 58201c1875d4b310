////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package tracker implements the optimistic-mutation protocol and the
// reconciliation loop on top of the replica store. Every mutation applies a
// tentative local change and notifies subscribers before the first network
// call, then either confirms it with the backing store's answer or rolls it
// back. A change-notification subscription keeps the replica eventually
// consistent with other clients by refetching all collections wholesale.
package tracker

import (
	"context"
	"time"

	"gitlab.com/tallyteam/tally/emoji"
	"gitlab.com/tallyteam/tally/gateway"
	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/replica"
	"gitlab.com/tallyteam/tally/storage/versioned"
)

const (
	// defaultFetchTimeout bounds one full-collection refetch.
	defaultFetchTimeout = 30 * time.Second
)

// Manager wires the replica store, the remote gateway, the reconciliation
// loop, and the recent emoji history together. One Manager owns all
// mutations of its Store for the process lifetime.
type Manager struct {
	store  *replica.Store
	gw     gateway.Gateway
	recent *emoji.History
	rec    *reconciler
}

// NewManager creates a Manager. The KV is used for the recent emoji
// history; the session-local fields already live inside the store.
func NewManager(
	store *replica.Store, gw gateway.Gateway, kv *versioned.KV) *Manager {
	return &Manager{
		store:  store,
		gw:     gw,
		recent: emoji.LoadHistory(kv),
		rec:    newReconciler(store, gw, defaultFetchTimeout),
	}
}

// Start performs the startup fetch and opens the change-notification
// subscription. The startup fetch is allowed to fail (the replica stays
// empty until the first successful refetch); a subscription failure is
// returned because without it the client would never converge.
func (m *Manager) Start() error {
	return m.rec.start()
}

// Stop cancels the change subscription and stops the reconciliation loop.
// Outstanding mutations still run to completion and mutate the store.
func (m *Manager) Stop() {
	m.rec.stop()
}

// Store exposes the replica for reads and subscription. External code must
// never mutate collection contents directly.
func (m *Manager) Store() *replica.Store {
	return m.store
}

// Refresh manually triggers one fetch-and-replace cycle.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.rec.refetch(ctx)
}

// RecentEmojis returns the user's most recently used reaction emojis, most
// recent first, at most six.
func (m *Manager) RecentEmojis() []string {
	return m.recent.Get()
}

// SwitchUser makes the given user the acting identity and persists the
// choice. The user must be present in the replica.
func (m *Manager) SwitchUser(userID model.ID) error {
	snap := m.store.Snapshot()
	u, ok := snap.User(userID)
	if !ok {
		return ErrNotFound
	}
	return m.store.SetCurrentUser(u)
}

// SetLanguage updates and persists the interface language.
func (m *Manager) SetLanguage(code string) error {
	return m.store.SetLanguage(code)
}

// SetPreference updates and persists one display preference.
func (m *Manager) SetPreference(key, value string) error {
	return m.store.SetPreference(key, value)
}
