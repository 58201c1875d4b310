////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package model

import (
	"strconv"
	"sync/atomic"

	"gitlab.com/xx_network/primitives/netTime"
)

// ID identifies one entity in the replica. An ID is either remote, assigned
// by the backing store, or local, generated on this client for a tentative
// record that has not yet been confirmed. A local ID never compares equal to
// a remote ID, even if the backing store were to hand out the same string.
type ID struct {
	value string
	local bool
}

// localCounter disambiguates local IDs generated within the same nanosecond.
var localCounter uint64

// NewLocalID returns a process-unique ID for a tentative record. The value
// is derived from the wall clock plus a monotonic counter.
func NewLocalID() ID {
	c := atomic.AddUint64(&localCounter, 1)
	return ID{
		value: strconv.FormatInt(netTime.Now().UnixNano(), 10) +
			"." + strconv.FormatUint(c, 10),
		local: true,
	}
}

// RemoteID wraps an identifier assigned by the backing store.
func RemoteID(value string) ID {
	return ID{value: value}
}

// IsLocal reports whether the ID was generated on this client and has not
// been confirmed by the backing store.
func (id ID) IsLocal() bool {
	return id.local
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.value == ""
}

// Value returns the raw identifier string. For remote IDs this is the value
// understood by the backing store; local values are only meaningful within
// this process.
func (id ID) Value() string {
	return id.value
}

// String adheres to the fmt.Stringer interface. Local IDs are marked so they
// are distinguishable in logs.
func (id ID) String() string {
	if id.local {
		return "local:" + id.value
	}
	return id.value
}
