package server

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"treeline/internal/logger"
	"treeline/internal/operations"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow connections without origin header (e.g., CLI tools)
		if origin == "" {
			return true
		}

		allowedOrigins := []string{
			"http://localhost",
			"https://localhost",
			"http://127.0.0.1",
			"https://127.0.0.1",
			"http://[::1]",
			"https://[::1]",
		}
		for _, allowed := range allowedOrigins {
			if strings.HasPrefix(origin, allowed) {
				return true
			}
		}

		logger.WithFields(logger.Fields{
			"origin": origin,
			"remote": r.RemoteAddr,
		}).Warn("WebSocket connection rejected - invalid origin")
		return false
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub fans run lifecycle events out to connected websocket clients. It
// implements operations.Broadcaster; a slow or dead client is dropped rather
// than allowed to block the others.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{clients: map[*websocket.Conn]bool{}}
}

// Broadcast sends an event to every connected client
func (h *Hub) Broadcast(event operations.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(event); err != nil {
			logger.WithError(err).Debug("Dropping websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}

// handleWebSocket upgrades the connection and streams run events until the
// client disconnects. Inbound messages are drained and ignored except as a
// liveness signal.
func (s *Server) handleWebSocket(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.WithError(err).Error("Failed to upgrade WebSocket connection")
		return err
	}

	s.hub.register(conn)
	defer s.hub.unregister(conn)

	logger.WithField("remote", conn.RemoteAddr().String()).Debug("WebSocket client connected")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.WithError(err).Debug("WebSocket read error")
			}
			return nil
		}
	}
}
