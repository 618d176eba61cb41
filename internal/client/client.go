// Package client talks to a wordmix server over a websocket and delivers the
// decoded server events on a channel.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/bloops-games/wordmix/internal/protocol"
	"github.com/gorilla/websocket"
)

const (
	eventBuffer = 32
	closeGrace  = time.Second
)

var ErrClosed = fmt.Errorf("client closed")

type Client struct {
	ws *websocket.Conn

	// guards writes on ws
	wmtx sync.Mutex

	events chan protocol.Event
	done   chan struct{}
	once   sync.Once

	mtx sync.Mutex
	err error
}

// Dial connects to url, e.g. ws://localhost:8765/ws.
func Dial(ctx context.Context, url string) (*Client, error) {
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		ws:     ws,
		events: make(chan protocol.Event, eventBuffer),
		done:   make(chan struct{}),
	}
	go c.readLoop(ctx)

	return c, nil
}

// Events is closed when the connection ends; Err then reports why.
func (c *Client) Events() <-chan protocol.Event {
	return c.events
}

func (c *Client) Err() error {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.err
}

func (c *Client) readLoop(ctx context.Context) {
	logger := logging.FromContext(ctx).Named("client.readLoop")
	defer close(c.events)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
				c.setErr(ErrClosed)
			default:
				c.setErr(fmt.Errorf("read: %w", err))
			}
			return
		}

		e, err := protocol.Decode(data)
		if err != nil {
			logger.Warnf("skipping frame: %v", err)
			continue
		}

		select {
		case c.events <- e:
		case <-c.done:
			c.setErr(ErrClosed)
			return
		}
	}
}

func (c *Client) setErr(err error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	if c.err == nil {
		c.err = err
	}
}

func (c *Client) Send(req protocol.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", req.Action, err)
	}

	c.wmtx.Lock()
	defer c.wmtx.Unlock()

	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write %s: %w", req.Action, err)
	}
	return nil
}

func (c *Client) ListRooms() error {
	return c.Send(protocol.Request{Action: protocol.ActionListRooms})
}

// CreateRoom asks for a new room. A nil seed lets the server pick one.
func (c *Client) CreateRoom(name, mode string, level int, seed *int64) error {
	return c.Send(protocol.Request{
		Action:     protocol.ActionCreateRoom,
		PlayerName: name,
		Mode:       mode,
		Level:      &level,
		Seed:       seed,
	})
}

func (c *Client) JoinRoom(roomID, name string) error {
	return c.Send(protocol.Request{Action: protocol.ActionJoinRoom, RoomID: roomID, PlayerName: name})
}

func (c *Client) Ready() error {
	return c.Send(protocol.Request{Action: protocol.ActionPlayerReady})
}

func (c *Client) CheckWord(word string) error {
	return c.Send(protocol.Request{Action: protocol.ActionCheckWord, Word: word})
}

func (c *Client) Leave() error {
	return c.Send(protocol.Request{Action: protocol.ActionLeaveRoom})
}

// Close says goodbye to the server and releases the connection. Safe to call
// more than once.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.wmtx.Lock()
		close(c.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		c.wmtx.Unlock()

		err = c.ws.Close()
	})
	return err
}
