////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"

	"gitlab.com/tallyteam/tally/gateway"
	"gitlab.com/tallyteam/tally/model"
	"gitlab.com/tallyteam/tally/replica"
)

// notificationBuffer absorbs bursts of change notifications. The gateway
// callback blocks once it fills, so no notification is ever dropped.
const notificationBuffer = 16

// reconciler keeps the replica eventually consistent with the backing
// store. Any change notification, regardless of payload, triggers one full
// fetch-and-replace cycle; partial patching from notification payloads is
// never attempted.
type reconciler struct {
	store *replica.Store
	gw    gateway.Gateway

	fetchTimeout time.Duration

	notifyCh    chan struct{}
	quit        chan struct{}
	done        chan struct{}
	unsubscribe func()
	stopOnce    sync.Once
}

func newReconciler(store *replica.Store, gw gateway.Gateway,
	fetchTimeout time.Duration) *reconciler {
	return &reconciler{
		store:        store,
		gw:           gw,
		fetchTimeout: fetchTimeout,
		notifyCh:     make(chan struct{}, notificationBuffer),
		quit:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// start performs the startup fetch, opens the change subscription, and
// launches the loop. A failed startup fetch is logged and retried by the
// next notification; a failed subscription is fatal to startup.
func (r *reconciler) start() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.fetchTimeout)
	if err := r.refetch(ctx); err != nil {
		jww.WARN.Printf("Startup fetch failed, replica empty until the "+
			"first notification: %+v", err)
	}
	cancel()

	unsubscribe, err := r.gw.SubscribeToChanges(r.notified)
	if err != nil {
		return errors.WithMessage(
			err, "Failed to subscribe to remote changes")
	}
	r.unsubscribe = unsubscribe

	go r.loop()
	return nil
}

// stop cancels the subscription and waits for the loop to exit.
func (r *reconciler) stop() {
	r.stopOnce.Do(func() {
		if r.unsubscribe != nil {
			r.unsubscribe()
		}
		close(r.quit)
		<-r.done
	})
}

// notified is the gateway callback. It enqueues one cycle per notification;
// no debouncing.
func (r *reconciler) notified() {
	select {
	case r.notifyCh <- struct{}{}:
	case <-r.quit:
	}
}

func (r *reconciler) loop() {
	defer close(r.done)

	for {
		select {
		case <-r.quit:
			return
		case <-r.notifyCh:
			ctx, cancel := context.WithTimeout(
				context.Background(), r.fetchTimeout)
			if err := r.refetch(ctx); err != nil {
				// Keep the prior replica; the subscription itself is
				// the retry mechanism.
				jww.WARN.Printf("Refetch failed, replica retained: %+v",
					err)
			}
			cancel()
		}
	}
}

// refetch fetches all four collections and swaps them into the store in one
// atomic replace. If any fetch fails, nothing is replaced.
func (r *reconciler) refetch(ctx context.Context) error {
	userRows, err := r.gw.FetchUsers(ctx)
	if err != nil {
		return errors.WithMessagef(
			gateway.ErrRemoteFetchFailed, "users: %s", err)
	}
	challengeRows, err := r.gw.FetchChallenges(ctx)
	if err != nil {
		return errors.WithMessagef(
			gateway.ErrRemoteFetchFailed, "challenges: %s", err)
	}
	eventRows, err := r.gw.FetchEvents(ctx)
	if err != nil {
		return errors.WithMessagef(
			gateway.ErrRemoteFetchFailed, "events: %s", err)
	}
	messageRows, err := r.gw.FetchMessages(ctx)
	if err != nil {
		return errors.WithMessagef(
			gateway.ErrRemoteFetchFailed, "messages: %s", err)
	}

	users := make([]model.User, len(userRows))
	for i, row := range userRows {
		users[i] = row.Decode()
	}
	challenges := make([]model.Challenge, len(challengeRows))
	for i, row := range challengeRows {
		challenges[i] = row.Decode()
	}
	events := make([]model.Event, len(eventRows))
	for i, row := range eventRows {
		events[i] = row.Decode()
	}

	messages := make([]model.Message, 0, len(messageRows))
	for _, row := range messageRows {
		msg, err := row.Decode()
		if err != nil {
			// One bad row must not wedge the whole replica.
			jww.WARN.Printf("Skipping undecodable message row: %+v", err)
			continue
		}
		messages = append(messages, msg)
	}

	r.store.ReplaceAll(&users, &challenges, &events, &messages)
	return nil
}
