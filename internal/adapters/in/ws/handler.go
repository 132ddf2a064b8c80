// Package ws carries realtime sessions over gorilla/websocket. Each connection gets a
// BufferedSession in the registry, a reader goroutine that routes inbound frames and
// a writer goroutine that drains the session outbox.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dispatch/internal/adapters/in/auth"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/realtime"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

// TokenVerifier authenticates the token presented on connect.
type TokenVerifier interface {
	Verify(token string) (kernel.Actor, error)
}

// Handler upgrades authenticated requests to websocket sessions.
type Handler struct {
	registry *realtime.Registry
	router   *realtime.Router
	verifier TokenVerifier
	upgrader websocket.Upgrader
	buffer   int
	logger   *slog.Logger
}

// NewHandler creates the handler. buffer is the per-session outbox size,
// realtime.DefaultSessionBuffer when not positive.
func NewHandler(
	registry *realtime.Registry,
	router *realtime.Router,
	verifier TokenVerifier,
	buffer int,
	logger *slog.Logger,
) *Handler {
	if buffer <= 0 {
		buffer = realtime.DefaultSessionBuffer
	}
	return &Handler{
		registry: registry,
		router:   router,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		buffer: buffer,
		logger: logger.With("component", "ws"),
	}
}

// ServeHTTP authenticates with the token query parameter or the Authorization header,
// then runs the session until either side closes it.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token, _ = auth.BearerToken(r.Header.Get("Authorization"))
	}
	actor, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.Debug("Websocket upgrade failed", "error", err)
		return
	}

	session := realtime.NewBufferedSession(uuid.NewString(), h.buffer)
	if err = h.registry.Register(actor, session); err != nil {
		h.logger.Warn("Session registration failed", "actor_id", actor.ID.String(), "error", err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	h.router.Welcome(actor, session)
	h.logger.Info("socket_connect",
		"actor_id", actor.ID.String(),
		"role", actor.Role.String(),
		"session_id", session.ID(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, session)
	}()

	h.readPump(r.Context(), conn, actor, session)

	h.registry.Detach(actor.ID, actor.Role, session.ID())
	session.Close()
	<-done
	h.logger.Info("socket_disconnect",
		"actor_id", actor.ID.String(),
		"role", actor.Role.String(),
		"session_id", session.ID(),
	)
}

// readPump routes frames until the peer goes away or the session is no longer registered.
func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, actor kernel.Actor, session *realtime.BufferedSession) {
	// The request context ends with the hijacked connection's handler.
	ctx = context.WithoutCancel(ctx)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket read failed", "session_id", session.ID(), "error", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err = h.router.Route(ctx, actor, session, raw); err != nil {
			if errors.Is(err, realtime.ErrSessionExpired) {
				return
			}
			h.logger.Warn("Frame routing failed", "session_id", session.ID(), "error", err)
		}
	}
}

// writePump drains the outbox and keeps the connection alive with pings. When the
// outbox is closed, by eviction, replacement or disconnect, it sends a close frame.
func (h *Handler) writePump(conn *websocket.Conn, session *realtime.BufferedSession) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case payload, ok := <-session.Outbox():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
