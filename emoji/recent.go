////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package emoji

import (
	"encoding/json"
	"sync"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/tallyteam/tally/storage/versioned"
)

const (
	recentPrefix = "recentEmoji"

	recentStorageKey     = "recentEmojiList"
	recentStorageVersion = 0

	// maxRecent bounds the history shown in the reaction picker.
	maxRecent = 6
)

// History is the bounded most-recently-used emoji list, persisted to the
// durable client storage. Most recent first, deduplicated.
type History struct {
	list []string
	mux  sync.RWMutex
	kv   *versioned.KV
}

// LoadHistory returns the stored history if there is one or a new empty one.
func LoadHistory(kv *versioned.KV) *History {
	h := &History{kv: kv.Prefix(recentPrefix)}

	obj, err := h.kv.Get(recentStorageKey, recentStorageVersion)
	if err != nil {
		if h.kv.Exists(err) {
			jww.FATAL.Panicf(
				"Failed to load recent emoji history: %+v", err)
		}
		return h
	}

	if err = json.Unmarshal(obj.Data, &h.list); err != nil {
		jww.WARN.Printf("Discarding unreadable recent emoji "+
			"history: %+v", err)
		h.list = nil
	}

	return h
}

// Add records a use of the emoji, moving it to the front of the list. The
// oldest entry falls off once the bound is reached.
func (h *History) Add(emoji string) {
	h.mux.Lock()
	defer h.mux.Unlock()

	next := make([]string, 0, maxRecent)
	next = append(next, emoji)
	for _, e := range h.list {
		if e == emoji {
			continue
		}
		next = append(next, e)
		if len(next) == maxRecent {
			break
		}
	}
	h.list = next

	if err := h.store(); err != nil {
		jww.WARN.Printf("Failed to store recent emoji history: %+v", err)
	}
}

// Get returns the history, most recent first.
func (h *History) Get() []string {
	h.mux.RLock()
	defer h.mux.RUnlock()

	out := make([]string, len(h.list))
	copy(out, h.list)
	return out
}

func (h *History) store() error {
	data, err := json.Marshal(h.list)
	if err != nil {
		return err
	}

	return h.kv.Set(recentStorageKey, &versioned.Object{
		Version:   recentStorageVersion,
		Timestamp: netTime.Now(),
		Data:      data,
	})
}
