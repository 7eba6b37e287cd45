package notifications

import (
	"context"
	"errors"
	"sync"

	"liftlog/internal/middleware"
	"liftlog/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	maxConnsPerVisitor = 8
	maxTotalConns      = 10000
)

var (
	ErrServerConnLimit  = errors.New("server connection limit reached")
	ErrVisitorConnLimit = errors.New("visitor connection limit reached")
	ErrHubClosed        = errors.New("hub is shut down")
)

// Hub maps visitor ids to their open session sockets.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	closed     bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*Client]struct{})}
}

// Register adds a connection for visitor.
func (h *Hub) Register(visitor string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}
	m, ok := h.conns[visitor]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[visitor] = m
	}
	if len(m) >= maxConnsPerVisitor {
		return nil, ErrVisitorConnLimit
	}

	client := newClient(h, conn, visitor)
	m[client] = struct{}{}
	h.totalConns++
	observability.SessionSockets.Inc()
	return client, nil
}

// Unregister removes client and closes its send channel. Calling it twice is safe.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.Visitor]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	if len(m) == 0 {
		delete(h.conns, client.Visitor)
	}
	h.totalConns--
	close(client.Send)
	observability.SessionSockets.Dec()
}

// Broadcast sends message to every connection of visitor.
func (h *Hub) Broadcast(visitor string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[visitor] {
		c.TrySend(message)
	}
}

// Connections returns the number of open connections for visitor.
func (h *Hub) Connections(visitor string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[visitor])
}

// Shutdown closes every connection. Each write pump sends the close frame
// once its send channel is closed.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	closed := 0
	for _, clients := range h.conns {
		for client := range clients {
			close(client.Send)
			observability.SessionSockets.Dec()
			closed++
		}
	}
	if closed > 0 {
		middleware.Logger.Info("closed session sockets", "count", closed)
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.totalConns = 0
	return nil
}
