////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package stats

import (
	"math"
	"time"

	"gitlab.com/xx_network/primitives/netTime"

	"gitlab.com/tallyteam/tally/model"
)

// WindowKind selects a calendar window for event filtering. The zero value
// spans all time.
type WindowKind uint8

const (
	AllTime WindowKind = iota
	Today
	ThisWeek
	ThisMonth
	ThisYear
	CustomRange
)

// Window is a calendar interval anchored at a reference instant. The named
// kinds resolve their boundaries in the reference time's location; weeks
// start on Monday. From and To apply to CustomRange only, From inclusive
// and To exclusive.
type Window struct {
	Kind WindowKind
	From time.Time
	To   time.Time
}

// Contains reports whether ts falls inside the window anchored at now.
func (w Window) Contains(ts, now time.Time) bool {
	var from, to time.Time
	switch w.Kind {
	case AllTime:
		return true
	case Today:
		from = startOfDay(now)
		to = from.AddDate(0, 0, 1)
	case ThisWeek:
		// Monday is day zero.
		offset := (int(now.Weekday()) + 6) % 7
		from = startOfDay(now).AddDate(0, 0, -offset)
		to = from.AddDate(0, 0, 7)
	case ThisMonth:
		from = time.Date(
			now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(0, 1, 0)
	case ThisYear:
		from = time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(1, 0, 0)
	case CustomRange:
		from, to = w.From, w.To
	}
	return !ts.Before(from) && ts.Before(to)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Filter narrows the event set a ratio is computed over. A zero UserID
// matches every user. A zero ReferenceTime anchors the window at the
// current wall clock.
type Filter struct {
	UserID        model.ID
	Window        Window
	ReferenceTime time.Time
}

func (f Filter) matches(ev model.Event) bool {
	if f.UserID != (model.ID{}) && ev.UserID != f.UserID {
		return false
	}
	now := f.ReferenceTime
	if now.IsZero() {
		now = netTime.Now()
	}
	return f.Window.Contains(ev.CreatedAt, now)
}

// RatioResult carries the two counts and their rounded percentage.
type RatioResult struct {
	Numerator   int
	Denominator int
	Percentage  int
}

// Ratio counts the events referencing each of the two actions, subject to
// the filter, and reports numerator over denominator as a percentage
// rounded to the nearest integer. A zero denominator yields 0, never a
// division error.
func Ratio(snap model.Snapshot, numeratorActionID, denominatorActionID model.ID,
	f Filter) RatioResult {
	var res RatioResult
	for _, ev := range snap.Events {
		if !f.matches(ev) {
			continue
		}
		switch ev.ActionID {
		case numeratorActionID:
			res.Numerator++
		case denominatorActionID:
			res.Denominator++
		}
	}
	if res.Denominator != 0 {
		res.Percentage = int(math.Round(
			float64(res.Numerator) / float64(res.Denominator) * 100))
	}
	return res
}
