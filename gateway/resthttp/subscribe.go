////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

package resthttp

import (
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
)

// SubscribeToChanges dials the store's websocket change stream and fires
// the callback once per received frame. Frame contents are ignored; a
// frame only means "something changed somewhere". A dropped connection is
// redialed until the subscription is cancelled. The initial dial failing
// is an error; after that the stream heals itself.
func (c *Client) SubscribeToChanges(callback func()) (func(), error) {
	wsURL, err := c.changesURL()
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, errors.WithMessagef(
			err, "dialing change stream %s", wsURL)
	}

	s := &subscription{
		url:         wsURL,
		redialDelay: c.redialDelay,
		conn:        conn,
		quit:        make(chan struct{}),
	}
	go s.run(callback)
	return s.stop, nil
}

// changesURL rewrites the REST base URL into the websocket endpoint.
func (c *Client) changesURL() (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", errors.WithMessagef(
			err, "parsing base URL %s", c.baseURL)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", errors.Errorf(
			"cannot derive a change stream URL from scheme %q", u.Scheme)
	}
	u.Path = u.Path + "/changes"
	return u.String(), nil
}

type subscription struct {
	url         string
	redialDelay time.Duration

	mux  sync.Mutex
	conn *websocket.Conn

	quit     chan struct{}
	stopOnce sync.Once
}

func (s *subscription) run(callback func()) {
	for {
		if _, _, err := s.current().ReadMessage(); err != nil {
			if s.stopped() {
				return
			}
			jww.WARN.Printf(
				"Change stream read failed, redialing: %+v", err)
			if !s.redial() {
				return
			}
			continue
		}
		callback()
	}
}

// redial reconnects after the configured delay, looping until it succeeds
// or the subscription is cancelled.
func (s *subscription) redial() bool {
	for {
		select {
		case <-s.quit:
			return false
		case <-time.After(s.redialDelay):
		}

		conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
		if err != nil {
			jww.WARN.Printf("Change stream redial failed: %+v", err)
			continue
		}

		s.mux.Lock()
		s.conn = conn
		s.mux.Unlock()

		// Lost the race with stop: drop the fresh connection.
		if s.stopped() {
			conn.Close()
			return false
		}
		return true
	}
}

func (s *subscription) current() *websocket.Conn {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.conn
}

func (s *subscription) stopped() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

func (s *subscription) stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.mux.Lock()
		s.conn.Close()
		s.mux.Unlock()
	})
}
