// Copyright (c) 2023 Remlabs
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
// the Software, and to permit persons to whom the Software is furnished to do so,
// subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
// FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
// COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
// IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
// CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.

package gorem

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// LiveEventKind is the kind of change a live subscription observed
type LiveEventKind string

const (
	LiveCreate LiveEventKind = "create"
	LiveUpdate LiveEventKind = "update"
	LiveDelete LiveEventKind = "delete"
	LiveEnter  LiveEventKind = "enter"
	LiveLeave  LiveEventKind = "leave"
)

// LiveEvent is one change delivered to a live subscription. Err is set on the
// final event when the connection breaks, after which the channel closes.
type LiveEvent struct {
	Kind   LiveEventKind
	Object map[string]interface{}
	Err    error
}

type liveMessage struct {
	Op            string                 `json:"op,omitempty"`
	RequestID     int                    `json:"requestId,omitempty"`
	ApplicationID string                 `json:"applicationId,omitempty"`
	ClientKey     string                 `json:"clientKey,omitempty"`
	Query         *liveQuery             `json:"query,omitempty"`
	Object        map[string]interface{} `json:"object,omitempty"`
	Code          int                    `json:"code,omitempty"`
	Error         string                 `json:"error,omitempty"`
}

type liveQuery struct {
	ClassName string                 `json:"className"`
	Where     map[string]interface{} `json:"where"`
}

// LiveClient maintains one websocket connection to the store's live query
// endpoint and fans events out to its subscriptions
type LiveClient struct {
	conn   *websocket.Conn
	logger Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]chan LiveEvent
	closed bool
}

// NewLiveClient dials the live query endpoint and performs the connect
// handshake before any subscription is accepted
func NewLiveClient(url string, config *Config) (*LiveClient, error) {
	logger := config.Logger
	if logger == nil {
		logger = GetDefaultLogger()
	}

	// copy the default dialer, the package global must stay untouched
	dialer := *websocket.DefaultDialer
	dialer.EnableCompression = true

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}

	c := &LiveClient{
		conn:   conn,
		logger: logger,
		subs:   map[int]chan LiveEvent{},
	}

	err = conn.WriteJSON(&liveMessage{
		Op:            "connect",
		ApplicationID: config.ApplicationID,
		ClientKey:     config.APIKey,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}

	var reply liveMessage
	if err = conn.ReadJSON(&reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}

	if reply.Op != "connected" {
		conn.Close()
		return nil, fmt.Errorf("live query handshake failed: %s (%s), %w", reply.Op, reply.Error, ErrConnection)
	}

	go c.readLoop()

	return c, nil
}

// LiveSubscription delivers change events for one query until unsubscribed or
// the connection closes
type LiveSubscription struct {
	ID     int
	Events <-chan LiveEvent

	client *LiveClient
	events chan LiveEvent
}

// Subscribe registers a live subscription for the query's collection and
// filter
func (c *LiveClient) Subscribe(query *Query) (*LiveSubscription, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, fmt.Errorf("live client is closed, %w", ErrConnection)
	}

	c.nextID++
	id := c.nextID

	err := c.conn.WriteJSON(&liveMessage{
		Op:        "subscribe",
		RequestID: id,
		Query: &liveQuery{
			ClassName: query.ClassName(),
			Where:     query.where,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}

	events := make(chan LiveEvent, 16)
	c.subs[id] = events

	return &LiveSubscription{
		ID:     id,
		Events: events,
		client: c,
		events: events,
	}, nil
}

// Unsubscribe stops event delivery and closes the subscription's channel
func (s *LiveSubscription) Unsubscribe() error {
	c := s.client

	c.mu.Lock()
	defer c.mu.Unlock()

	events, ok := c.subs[s.ID]
	if !ok {
		return nil
	}

	delete(c.subs, s.ID)
	close(events)

	if c.closed {
		return nil
	}

	err := c.conn.WriteJSON(&liveMessage{
		Op:        "unsubscribe",
		RequestID: s.ID,
	})
	if err != nil {
		return fmt.Errorf("%s, %w", err.Error(), ErrConnection)
	}

	return nil
}

// Close tears the connection down, ending every open subscription
func (c *LiveClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := c.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
		return c.conn.Close()
	}

	return c.conn.Close()
}

func (c *LiveClient) readLoop() {
	for {
		var msg liveMessage
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			c.fail(err)
			return
		}

		switch msg.Op {
		case "subscribed", "unsubscribed":
			c.logger.Debugf("live query %s for request %d", msg.Op, msg.RequestID)
		case "create", "update", "delete", "enter", "leave":
			c.dispatch(msg.RequestID, LiveEvent{
				Kind:   LiveEventKind(msg.Op),
				Object: msg.Object,
			})
		case "error":
			c.logger.Errorf("live query error %d: %s", msg.Code, msg.Error)
			if msg.RequestID != 0 {
				c.dispatch(msg.RequestID, LiveEvent{
					Err: &RemoteError{Code: msg.Code, Message: msg.Error},
				})
			}
		default:
			c.logger.Warnf("unknown live query op '%s'", msg.Op)
		}
	}
}

func (c *LiveClient) dispatch(requestID int, event LiveEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, ok := c.subs[requestID]
	if !ok {
		return
	}

	select {
	case events <- event:
	default:
		c.logger.Warnf("live query subscriber %d is not keeping up, dropping event", requestID)
	}
}

// fail ends every subscription with the terminal error
func (c *LiveClient) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, events := range c.subs {
		if !c.closed {
			select {
			case events <- LiveEvent{Err: err}:
			default:
			}
		}
		close(events)
		delete(c.subs, id)
	}
}
