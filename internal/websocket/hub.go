// Package websocket carries the chat request/reply contract over a WebSocket:
// every text frame is one chat request, every answer is one JSON frame.
package websocket

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"komo-backend/internal/models"
	"komo-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const closeGracePeriod = time.Second

// Hub tracks open sockets so they can be closed on shutdown; hijacked
// connections are not closed by http.Server.Shutdown.
type Hub struct {
	mu          sync.Mutex
	connections map[*websocket.Conn]struct{}
	closed      bool
	chatService *services.ChatService
	readLimit   int64
}

func NewHub(chatService *services.ChatService, readLimit int64) *Hub {
	return &Hub{
		connections: make(map[*websocket.Conn]struct{}),
		chatService: chatService,
		readLimit:   readLimit,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	if !h.registerConnection(conn) {
		conn.Close()
		return
	}

	go func() {
		defer h.unregisterConnection(conn)
		h.serve(conn)
	}()
}

func (h *Hub) serve(conn *websocket.Conn) {
	if h.readLimit > 0 {
		conn.SetReadLimit(h.readLimit)
	}

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			if err := conn.WriteJSON(models.ErrorResponse{Error: "Only text frames are supported"}); err != nil {
				return
			}
			continue
		}

		var payload interface{}
		resp, err := h.chatService.Handle(data)
		if err != nil {
			payload = errorPayload(err)
		} else {
			payload = resp
		}

		if err := conn.WriteJSON(payload); err != nil {
			return
		}
	}
}

func errorPayload(err error) models.ErrorResponse {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		return models.ErrorResponse{Error: verr.Message}
	}
	return models.ErrorResponse{Error: "Internal server error: " + err.Error()}
}

func (h *Hub) registerConnection(conn *websocket.Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	h.connections[conn] = struct{}{}

	slog.Debug("websocket connected", "remote", conn.RemoteAddr().String(), "total", len(h.connections))
	return true
}

func (h *Hub) unregisterConnection(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	delete(h.connections, conn)

	slog.Debug("websocket disconnected", "remote", conn.RemoteAddr().String())
}

// Count reports the number of open sockets.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// Close sends a going-away frame to every open socket, closes it and refuses
// new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for conn := range h.connections {
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		conn.Close()
	}
}
