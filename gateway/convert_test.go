////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package gateway

import (
	"testing"
	"time"

	"gitlab.com/tallyteam/tally/model"
)

// Tests that a message row decodes into a replica message with a remote ID,
// parsed kind, and reaction list intact.
func TestMessageRow_Decode(t *testing.T) {
	row := MessageRow{
		ID:        "m1",
		UserID:    "u1",
		Text:      "hello",
		Kind:      "text",
		CreatedAt: time.Unix(1700000000, 0),
		ReplyTo:   "m0",
		Reactions: []ReactionRow{{UserID: "u2", Emoji: "👍"}},
	}

	msg, err := row.Decode()
	if err != nil {
		t.Fatalf("Decode error: %+v", err)
	}
	if msg.ID != model.RemoteID("m1") || msg.ID.IsLocal() {
		t.Fatalf("decoded ID wrong: %s", msg.ID)
	}
	if msg.Kind != model.Text {
		t.Fatalf("decoded kind wrong: %s", msg.Kind)
	}
	if msg.ReplyTo != model.RemoteID("m0") {
		t.Fatalf("decoded reply-to wrong: %s", msg.ReplyTo)
	}
	if len(msg.Reactions) != 1 || msg.Reactions[0].Emoji != "👍" {
		t.Fatalf("decoded reactions wrong: %v", msg.Reactions)
	}
}

// Error case: Tests that an unknown kind fails to decode.
func TestMessageRow_Decode_BadKind(t *testing.T) {
	row := MessageRow{ID: "m1", Kind: "sticker"}
	if _, err := row.Decode(); err == nil {
		t.Fatalf("Decode accepted an unknown message kind")
	}
}

// Tests that a message without a reply decodes with a zero ReplyTo.
func TestMessageRow_Decode_NoReply(t *testing.T) {
	row := MessageRow{ID: "m1", UserID: "u1", Kind: "event-announcement"}
	msg, err := row.Decode()
	if err != nil {
		t.Fatalf("Decode error: %+v", err)
	}
	if !msg.ReplyTo.IsZero() {
		t.Fatalf("decoded ReplyTo not zero: %s", msg.ReplyTo)
	}
}

// Tests that encoding a tentative event omits its local ID.
func TestEncodeEvent_LocalID(t *testing.T) {
	ev := model.Event{
		ID:          model.NewLocalID(),
		UserID:      model.RemoteID("u1"),
		ActionID:    model.RemoteID("a1"),
		ChallengeID: model.RemoteID("c1"),
	}

	row := EncodeEvent(ev)
	if row.ID != "" {
		t.Fatalf("encoded row carries a local ID: %q", row.ID)
	}
	if row.UserID != "u1" || row.ActionID != "a1" || row.ChallengeID != "c1" {
		t.Fatalf("encoded row references wrong: %+v", row)
	}
}

// Tests that encoding a tentative message omits its local ID but keeps the
// remote reply reference.
func TestEncodeMessage_LocalID(t *testing.T) {
	msg := model.Message{
		ID:      model.NewLocalID(),
		UserID:  model.RemoteID("u1"),
		Text:    "hi",
		Kind:    model.Text,
		ReplyTo: model.RemoteID("m9"),
	}

	row := EncodeMessage(msg)
	if row.ID != "" {
		t.Fatalf("encoded row carries a local ID: %q", row.ID)
	}
	if row.ReplyTo != "m9" {
		t.Fatalf("encoded reply-to wrong: %q", row.ReplyTo)
	}
	if row.Kind != "text" {
		t.Fatalf("encoded kind wrong: %q", row.Kind)
	}
}
