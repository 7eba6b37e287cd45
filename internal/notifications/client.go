package notifications

import (
	"time"

	"liftlog/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Session sockets are push-only; inbound frames are pings and closes.
	maxMessageSize = 512
)

// Client is the middleman between one websocket connection and the hub.
type Client struct {
	hub *Hub

	// Conn is nil in tests that only exercise the hub bookkeeping.
	Conn *websocket.Conn

	// Buffered channel of outbound messages.
	Send chan []byte

	Visitor string
}

func newClient(hub *Hub, conn *websocket.Conn, visitor string) *Client {
	return &Client{
		hub:     hub,
		Conn:    conn,
		Visitor: visitor,
		Send:    make(chan []byte, 16),
	}
}

// ReadPump drains the connection until it closes, then unregisters.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { _ = c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("session socket read failed", "visitor_id", c.Visitor, "error", err)
			}
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// TrySend queues message without blocking. Session states supersede each
// other, so when the buffer is full the oldest queued state is dropped.
func (c *Client) TrySend(message []byte) {
	defer func() {
		// Send was closed by the hub.
		_ = recover()
	}()

	for {
		select {
		case c.Send <- message:
			return
		default:
		}
		select {
		case <-c.Send:
		default:
		}
	}
}
