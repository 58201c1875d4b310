////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package model

import "testing"

// Consistency test of MessageKind.String and ParseMessageKind round trips.
func TestMessageKind_String_Parse(t *testing.T) {
	for _, mk := range []MessageKind{Text, EventAnnouncement} {
		parsed, err := ParseMessageKind(mk.String())
		if err != nil {
			t.Fatalf("ParseMessageKind(%q) error: %+v", mk.String(), err)
		}
		if parsed != mk {
			t.Fatalf("ParseMessageKind did not round trip."+
				"\nExpected: %s\nReceived: %s", mk, parsed)
		}
	}

	if _, err := ParseMessageKind("pinned"); err == nil {
		t.Fatalf("ParseMessageKind accepted an unknown kind")
	}
}

// Tests the Snapshot lookup helpers, including an action nested two
// challenges deep and the not-found cases.
func TestSnapshot_Lookups(t *testing.T) {
	a1 := Action{ID: RemoteID("a1"), ChallengeID: RemoteID("c1"), Points: 10}
	a2 := Action{ID: RemoteID("a2"), ChallengeID: RemoteID("c2"), Points: 5}
	snap := Snapshot{
		Users: []User{{ID: RemoteID("u1"), Name: "ana"}},
		Challenges: []Challenge{
			{ID: RemoteID("c1"), Actions: []Action{a1}},
			{ID: RemoteID("c2"), Actions: []Action{a2}},
		},
		Events:   []Event{{ID: RemoteID("e1"), ActionID: a1.ID}},
		Messages: []Message{{ID: RemoteID("m1"), Text: "hi"}},
	}

	if got, ok := snap.Action(a2.ID); !ok || got.Points != 5 {
		t.Fatalf("Action lookup failed.\nExpected: %v\nReceived: %v (%t)",
			a2, got, ok)
	}
	if _, ok := snap.Action(RemoteID("a3")); ok {
		t.Fatalf("Action lookup found a nonexistent action")
	}
	if _, ok := snap.User(RemoteID("u1")); !ok {
		t.Fatalf("User lookup failed")
	}
	if _, ok := snap.Message(NewLocalID()); ok {
		t.Fatalf("Message lookup matched an unknown local ID")
	}
	if _, ok := snap.Event(RemoteID("e1")); !ok {
		t.Fatalf("Event lookup failed")
	}
	if _, ok := snap.Challenge(RemoteID("c2")); !ok {
		t.Fatalf("Challenge lookup failed")
	}
}
