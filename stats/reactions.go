////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package stats

import "gitlab.com/tallyteam/tally/model"

// ReactionCount is one emoji and the number of users who picked it.
type ReactionCount struct {
	Emoji string
	Count int
}

// ReactionSummary groups a message's reactions by emoji. Emojis appear in
// first-seen order over the reaction array, which the store keeps stable
// across toggles.
func ReactionSummary(msg model.Message) []ReactionCount {
	var out []ReactionCount
	index := make(map[string]int)
	for _, r := range msg.Reactions {
		if i, ok := index[r.Emoji]; ok {
			out[i].Count++
			continue
		}
		index[r.Emoji] = len(out)
		out = append(out, ReactionCount{Emoji: r.Emoji, Count: 1})
	}
	return out
}
