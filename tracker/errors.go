////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package tracker

import "github.com/pkg/errors"

var (
	// ErrNotFound is returned when a referenced entity is absent from the
	// replica, e.g. reacting to a message another client deleted. Nothing
	// was applied, so there is nothing to roll back.
	ErrNotFound = errors.New("the referenced entity cannot be found")

	// ErrNoCurrentUser is returned when a mutation that needs an acting
	// identity is issued before one has been selected.
	ErrNoCurrentUser = errors.New("no current user has been selected")

	// ErrUnconfirmed is returned when a mutation addresses a tentative row
	// the backing store has not confirmed yet. The row cannot be named
	// remotely until a refetch installs its authoritative ID.
	ErrUnconfirmed = errors.New(
		"the referenced entity has not been confirmed by the backing " +
			"store yet")
)
