////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package storage

import (
	"strconv"
	"testing"

	"gitlab.com/elixxir/ekv"

	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/storage/versioned"
)

// Unit test. Tests that a fresh session reports no current user and the
// default language.
func TestSession_Defaults(t *testing.T) {
	s := New(versioned.NewKV(ekv.MakeMemstore()))

	if _, exists := s.GetCurrentUser(); exists {
		t.Fatalf("fresh session reported a current user")
	}
	if lang := s.GetLanguage(); lang != DefaultLanguage {
		t.Fatalf("fresh session language."+
			"\nExpected: %s\nReceived: %s", DefaultLanguage, lang)
	}
	if _, exists := s.GetPreference("theme"); exists {
		t.Fatalf("fresh session reported a preference")
	}
}

// Tests that current user, language, and preferences survive a reload from
// the same KV.
func TestSession_Reload(t *testing.T) {
	kv := versioned.NewKV(ekv.MakeMemstore())
	s := New(kv)

	uid := model.RemoteID("u42")
	if err := s.SetCurrentUser(uid); err != nil {
		t.Fatalf("SetCurrentUser error: %+v", err)
	}
	if err := s.SetLanguage("de"); err != nil {
		t.Fatalf("SetLanguage error: %+v", err)
	}
	for i := 0; i < 5; i++ {
		key := "pref#" + strconv.Itoa(i)
		if err := s.SetPreference(key, strconv.Itoa(i)); err != nil {
			t.Fatalf("SetPreference error for %s: %+v", key, err)
		}
	}

	s2 := New(kv)

	got, exists := s2.GetCurrentUser()
	if !exists || got != uid {
		t.Fatalf("current user did not survive reload."+
			"\nExpected: %s\nReceived: %s (%t)", uid, got, exists)
	}
	if lang := s2.GetLanguage(); lang != "de" {
		t.Fatalf("language did not survive reload."+
			"\nExpected: de\nReceived: %s", lang)
	}
	for i := 0; i < 5; i++ {
		key := "pref#" + strconv.Itoa(i)
		value, exists := s2.GetPreference(key)
		if !exists || value != strconv.Itoa(i) {
			t.Fatalf("preference %s did not survive reload, got %q (%t)",
				key, value, exists)
		}
	}
}

// Error case: Tests that a tentative local ID cannot be persisted as the
// current user.
func TestSession_SetCurrentUser_LocalID(t *testing.T) {
	s := New(versioned.NewKV(ekv.MakeMemstore()))

	if err := s.SetCurrentUser(model.NewLocalID()); err == nil {
		t.Fatalf("SetCurrentUser accepted a local ID")
	}
	if _, exists := s.GetCurrentUser(); exists {
		t.Fatalf("rejected SetCurrentUser still set the user")
	}
}

// Tests that Preferences returns a copy that does not alias internal state.
func TestSession_Preferences_Copy(t *testing.T) {
	s := New(versioned.NewKV(ekv.MakeMemstore()))
	if err := s.SetPreference("theme", "dark"); err != nil {
		t.Fatalf("SetPreference error: %+v", err)
	}

	prefs := s.Preferences()
	prefs["theme"] = "light"

	if value, _ := s.GetPreference("theme"); value != "dark" {
		t.Fatalf("mutating the returned map changed internal state")
	}
}
