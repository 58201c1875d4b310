////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package model

// Snapshot is a consistent view of the replica at one point in time. Callers
// must treat it as read-only; the collections are replaced wholesale on
// every refetch, never merged.
type Snapshot struct {
	Users      []User
	Challenges []Challenge
	Events     []Event
	Messages   []Message

	CurrentUser User
	Language    string

	// Preferences are small session-local display settings keyed by name.
	Preferences map[string]string
}

// User returns the user with the given ID.
func (s Snapshot) User(id ID) (User, bool) {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return s.Users[i], true
		}
	}
	return User{}, false
}

// Challenge returns the challenge with the given ID.
func (s Snapshot) Challenge(id ID) (Challenge, bool) {
	for i := range s.Challenges {
		if s.Challenges[i].ID == id {
			return s.Challenges[i], true
		}
	}
	return Challenge{}, false
}

// Action returns the action with the given ID, searching every challenge.
func (s Snapshot) Action(id ID) (Action, bool) {
	for i := range s.Challenges {
		for j := range s.Challenges[i].Actions {
			if s.Challenges[i].Actions[j].ID == id {
				return s.Challenges[i].Actions[j], true
			}
		}
	}
	return Action{}, false
}

// Event returns the event with the given ID.
func (s Snapshot) Event(id ID) (Event, bool) {
	for i := range s.Events {
		if s.Events[i].ID == id {
			return s.Events[i], true
		}
	}
	return Event{}, false
}

// Message returns the message with the given ID.
func (s Snapshot) Message(id ID) (Message, bool) {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}
