////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package stats derives display aggregates from a replica snapshot:
// leaderboard scores, action ratios over calendar windows, and reaction
// summaries. Everything here is a pure function recomputed on demand;
// nothing is cached or incrementally updated.
package stats

import (
	"sort"

	"gitlab.com/tallyteam/tally/model"
)

// LeaderboardEntry is one user's total for a challenge.
type LeaderboardEntry struct {
	User  model.User
	Score int
}

// Leaderboard computes every user's point total under the challenge: the
// sum of the point values of the actions referenced by that user's events.
// Users without events appear with score 0. The result is sorted by score
// descending; ties retain the users' snapshot ordering.
func Leaderboard(
	snap model.Snapshot, challengeID model.ID) []LeaderboardEntry {
	points := make(map[model.ID]int)
	for _, ch := range snap.Challenges {
		if ch.ID != challengeID {
			continue
		}
		for _, a := range ch.Actions {
			points[a.ID] = a.Points
		}
	}

	scores := make(map[model.ID]int)
	for _, ev := range snap.Events {
		if ev.ChallengeID != challengeID {
			continue
		}
		scores[ev.UserID] += points[ev.ActionID]
	}

	entries := make([]LeaderboardEntry, len(snap.Users))
	for i, u := range snap.Users {
		entries[i] = LeaderboardEntry{User: u, Score: scores[u.ID]}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	return entries
}
