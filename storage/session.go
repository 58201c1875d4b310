////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package storage persists session-local state across process restarts: the
// acting user identity, the interface language, and display preferences.
// Domain collections are never stored here; they are refetched from the
// backing store on every start.
package storage

import (
	"encoding/json"
	"sync"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/storage/versioned"
)

const (
	sessionPrefix = "session"

	currentUserStorageKey     = "currentUser"
	currentUserStorageVersion = 0

	languageStorageKey     = "language"
	languageStorageVersion = 0

	preferencesStorageKey     = "preferences"
	preferencesStorageVersion = 0

	// DefaultLanguage is used until the user picks one.
	DefaultLanguage = "en"
)

// Session is the durable session store, backed by a versioned KV.
type Session struct {
	kv *versioned.KV

	mux sync.RWMutex

	// memoized data
	currentUser model.ID
	language    string
	preferences map[string]string
}

// New loads the stored session if there is one or returns a fresh one.
func New(kv *versioned.KV) *Session {
	s := &Session{
		kv:          kv.Prefix(sessionPrefix),
		language:    DefaultLanguage,
		preferences: make(map[string]string),
	}

	if err := s.load(); err != nil && s.kv.Exists(err) {
		jww.FATAL.Panicf("Failed to load session store: %+v", err)
	}

	return s
}

// GetCurrentUser returns the persisted acting identity. The boolean is false
// if no user has been selected yet.
func (s *Session) GetCurrentUser() (model.ID, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.currentUser, !s.currentUser.IsZero()
}

// SetCurrentUser persists the acting identity. Only remote IDs may be
// persisted; a tentative ID is meaningless in a later process.
func (s *Session) SetCurrentUser(id model.ID) error {
	if id.IsLocal() {
		return errors.Errorf(
			"cannot persist local ID %s as the current user", id)
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	s.currentUser = id
	return s.save(currentUserStorageKey, currentUserStorageVersion,
		id.Value())
}

// GetLanguage returns the persisted interface language code.
func (s *Session) GetLanguage() string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.language
}

// SetLanguage persists the interface language code.
func (s *Session) SetLanguage(code string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.language = code
	return s.save(languageStorageKey, languageStorageVersion, code)
}

// GetPreference returns one display preference by key.
func (s *Session) GetPreference(key string) (string, bool) {
	s.mux.RLock()
	defer s.mux.RUnlock()
	value, exists := s.preferences[key]
	return value, exists
}

// SetPreference persists one display preference.
func (s *Session) SetPreference(key, value string) error {
	s.mux.Lock()
	defer s.mux.Unlock()

	s.preferences[key] = value
	return s.save(preferencesStorageKey, preferencesStorageVersion,
		s.preferences)
}

// Preferences returns a copy of all display preferences.
func (s *Session) Preferences() map[string]string {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make(map[string]string, len(s.preferences))
	for k, v := range s.preferences {
		out[k] = v
	}
	return out
}

// save marshals the value and writes it at the key.
func (s *Session) save(key string, version uint64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.WithMessagef(err, "Failed to marshal %s", key)
	}

	return s.kv.Set(key, &versioned.Object{
		Version:   version,
		Timestamp: netTime.Now(),
		Data:      data,
	})
}

// load restores the memoized fields from disk. Missing keys are left at
// their defaults; the first error that is not a missing element aborts.
func (s *Session) load() error {
	obj, err := s.kv.Get(currentUserStorageKey, currentUserStorageVersion)
	if err == nil {
		var raw string
		if err = json.Unmarshal(obj.Data, &raw); err != nil {
			return errors.WithMessage(err, "Failed to load current user")
		}
		s.currentUser = model.RemoteID(raw)
	} else if s.kv.Exists(err) {
		return err
	}

	obj, err = s.kv.Get(languageStorageKey, languageStorageVersion)
	if err == nil {
		if err = json.Unmarshal(obj.Data, &s.language); err != nil {
			return errors.WithMessage(err, "Failed to load language")
		}
	} else if s.kv.Exists(err) {
		return err
	}

	obj, err = s.kv.Get(preferencesStorageKey, preferencesStorageVersion)
	if err == nil {
		if err = json.Unmarshal(obj.Data, &s.preferences); err != nil {
			return errors.WithMessage(err, "Failed to load preferences")
		}
	} else if s.kv.Exists(err) {
		return err
	}

	return nil
}
