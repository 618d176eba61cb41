package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bloops-games/wordmix/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const closeGrace = time.Second

// conn is one websocket client. Send enqueues without blocking; the write
// pump is the only writer of ws.
type conn struct {
	id string
	ws *websocket.Conn

	mtx    sync.Mutex
	closed bool
	sndCh  chan []byte
}

func (c *conn) Send(data []byte) bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.closed {
		return false
	}

	select {
	case c.sndCh <- data:
		return true
	default:
		return false
	}
}

func (c *conn) close() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.sndCh)
}

func (h *handler) handleWS(ctx context.Context) http.HandlerFunc {
	logger := logging.FromContext(ctx).Named("server.handleWS")

	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debugf("upgrade %s: %v", r.RemoteAddr, err)
			return
		}

		c := &conn{
			id:    uuid.NewString(),
			ws:    ws,
			sndCh: make(chan []byte, h.config.SendBuffer),
		}
		h.manager.Connect(c.id, c)
		logger.Debugf("client %s connected from %s", c.id, r.RemoteAddr)

		done := make(chan struct{})
		go h.writePump(ctx, c, done)

		h.readPump(ctx, c)
		h.manager.Disconnect(ctx, c.id)
		c.close()
		<-done

		logger.Debugf("client %s disconnected", c.id)
	}
}

func (h *handler) readPump(ctx context.Context, c *conn) {
	logger := logging.FromContext(ctx).Named("server.readPump")

	c.ws.SetReadLimit(h.config.ReadLimit)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warnf("read from %s: %v", c.id, err)
			}
			return
		}

		if err := h.manager.Handle(ctx, c.id, data); err != nil {
			logger.Errorf("handle message from %s: %v", c.id, err)
			return
		}
	}
}

// writePump drains the outbox until it is closed, the write fails or ctx is
// done. Closing ws on exit unblocks the read pump.
func (h *handler) writePump(ctx context.Context, c *conn, done chan struct{}) {
	logger := logging.FromContext(ctx).Named("server.writePump")

	defer close(done)
	defer c.ws.Close()

	for {
		select {
		case <-ctx.Done():
			h.writeClose(c, websocket.CloseGoingAway, "server shutting down")
			return
		case data, ok := <-c.sndCh:
			if !ok {
				h.writeClose(c, websocket.CloseNormalClosure, "")
				return
			}

			_ = c.ws.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Debugf("write to %s: %v", c.id, err)
				return
			}
		}
	}
}

func (h *handler) writeClose(c *conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, text)
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
}
