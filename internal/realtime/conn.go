package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// sendBuffer bounds how far a slow consumer may fall behind before
	// it is disconnected and left to resync over HTTP.
	sendBuffer = 64
)

// Conn is one live realtime connection for an authenticated user.
type Conn struct {
	ID     string
	UserID string

	ws        *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
	done      chan struct{}
}

func NewConn(id, userID string, ws *websocket.Conn) *Conn {
	return &Conn{
		ID:     id,
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// TrySend queues a frame without blocking. A full buffer reports false;
// the caller decides whether that connection should be dropped.
func (c *Conn) TrySend(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Close is idempotent and unblocks both pumps.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.ws != nil {
			c.ws.Close()
		}
	})
}

// Done reports the channel closed when the connection is torn down.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Outbound exposes the send queue for delivery inspection in tests.
func (c *Conn) Outbound() <-chan []byte { return c.send }

// WritePump drains the send queue onto the socket and keeps the
// connection alive with pings. Runs until Close or a write error.
func (c *Conn) WritePump(log *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug("write failed, dropping connection", "conn_id", c.ID, "error", err)
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// ReadPump consumes inbound frames. Clients only talk to the server over
// HTTP; the read loop exists to process pongs and observe the close.
func (c *Conn) ReadPump(log *slog.Logger) {
	defer c.Close()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("unexpected close", "conn_id", c.ID, "error", err)
			}
			return
		}
	}
}
