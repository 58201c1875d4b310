////////////////////////////////////////////////////////////////////////////////
// Copyright © 2023 Tally Team                                                //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file                                                               //
////////////////////////////////////////////////////////////////////////////////

// Package resthttp implements the gateway contract over a REST backing
// store: JSON rows over HTTP for the collections, and a websocket stream
// for change notifications.
package resthttp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"gitlab.com/tallyteam/tally/gateway"
)

const (
	defaultTimeout     = 20 * time.Second
	defaultRedialDelay = 2 * time.Second
)

// Options configures a Client. Only BaseURL is required.
type Options struct {
	// BaseURL is the root of the store's REST API, e.g.
	// "http://localhost:8080/api".
	BaseURL string

	// HTTPClient overrides the default client and its timeout.
	HTTPClient *http.Client

	// RedialDelay is the pause before reconnecting a dropped change
	// stream.
	RedialDelay time.Duration
}

// Client talks to the backing store over HTTP. It implements
// gateway.Gateway.
type Client struct {
	baseURL     string
	hc          *http.Client
	redialDelay time.Duration
}

// New builds a Client from the options, filling in defaults.
func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	redialDelay := opts.RedialDelay
	if redialDelay <= 0 {
		redialDelay = defaultRedialDelay
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"),
		hc:          hc,
		redialDelay: redialDelay,
	}
}

func (c *Client) FetchUsers(ctx context.Context) ([]gateway.UserRow, error) {
	var rows []gateway.UserRow
	return rows, c.get(ctx, "/users", &rows)
}

func (c *Client) FetchChallenges(ctx context.Context) (
	[]gateway.ChallengeRow, error) {
	var rows []gateway.ChallengeRow
	return rows, c.get(ctx, "/challenges", &rows)
}

func (c *Client) FetchEvents(ctx context.Context) ([]gateway.EventRow, error) {
	var rows []gateway.EventRow
	return rows, c.get(ctx, "/events", &rows)
}

func (c *Client) FetchMessages(ctx context.Context) (
	[]gateway.MessageRow, error) {
	var rows []gateway.MessageRow
	return rows, c.get(ctx, "/messages", &rows)
}

func (c *Client) InsertEvent(ctx context.Context, row gateway.EventRow) (
	gateway.EventRow, error) {
	var inserted gateway.EventRow
	err := c.do(ctx, http.MethodPost, "/events", row, &inserted)
	return inserted, err
}

func (c *Client) UpdateEvent(ctx context.Context, row gateway.EventRow) error {
	return c.do(
		ctx, http.MethodPut, "/events/"+url.PathEscape(row.ID), row, nil)
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.do(
		ctx, http.MethodDelete, "/events/"+url.PathEscape(id), nil, nil)
}

func (c *Client) InsertMessage(ctx context.Context, row gateway.MessageRow) (
	gateway.MessageRow, error) {
	var inserted gateway.MessageRow
	err := c.do(ctx, http.MethodPost, "/messages", row, &inserted)
	return inserted, err
}

func (c *Client) UpdateMessageReactions(ctx context.Context, messageID string,
	reactions []gateway.ReactionRow) error {
	// The store treats the array as one value; an empty array is a valid
	// replacement and must not be dropped from the body.
	if reactions == nil {
		reactions = []gateway.ReactionRow{}
	}
	return c.do(ctx, http.MethodPut,
		"/messages/"+url.PathEscape(messageID)+"/reactions", reactions, nil)
}

// get performs a GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.WithMessagef(err, "building GET %s", path)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.WithMessagef(err, "GET %s", path)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("GET %s returned status %d",
			path, resp.StatusCode)
	}
	return errors.WithMessagef(
		json.NewDecoder(resp.Body).Decode(out), "decoding GET %s", path)
}

// do performs a write with an optional JSON request body and an optional
// JSON response decode. Any status outside 2xx is an error.
func (c *Client) do(ctx context.Context, method, path string,
	in, out interface{}) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return errors.WithMessagef(err, "encoding %s %s", method, path)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.WithMessagef(err, "building %s %s", method, path)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.WithMessagef(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("%s %s returned status %d",
			method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return errors.WithMessagef(
		json.NewDecoder(resp.Body).Decode(out), "decoding %s %s", method, path)
}
