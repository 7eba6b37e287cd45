package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"liftlog/internal/middleware"
	"liftlog/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebSocketUpgrade rejects plain HTTP requests to websocket routes.
func (s *Server) WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// WebSocketSessionHandler pushes the visitor's session state: once on
// connect and again on every change. The socket is push-only.
func (s *Server) WebSocketSessionHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		visitor, _ := conn.Locals(middleware.LocalVisitorID).(string)
		if visitor == "" {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","message":"no visitor"}`))
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(visitor, conn)
		if err != nil {
			level := slog.LevelWarn
			if errors.Is(err, notifications.ErrHubClosed) {
				level = slog.LevelInfo
			}
			middleware.Logger.Log(context.Background(), level, "session socket rejected", "visitor_id", visitor, "error", err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"error","message":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}

		if payload, err := json.Marshal(sessionEvent{Type: "session", Session: s.sessions.Get(visitor)}); err == nil {
			client.TrySend(payload)
		}

		// Start write pump in a goroutine
		go client.WritePump()

		// Read pump runs in the main handler goroutine (blocking)
		client.ReadPump()
	})
}
