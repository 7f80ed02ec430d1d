// Package ws provides WebSocket fan-out of session events.
package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/is0383kk/claude-multi-agent-api-server/internal/domain"
)

// ErrBufferFull is returned when a connection's send buffer is full.
var ErrBufferFull = errors.New("connection send buffer full")

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// Connection represents a single WebSocket subscriber.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte
	hub       *Hub
}

// Hub manages WebSocket subscribers grouped by session and implements
// the manager's Publisher interface.
type Hub struct {
	connections map[string]*Connection
	sessions    map[string]map[string]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *sessionMessage

	log *slog.Logger
	mu  sync.RWMutex
}

type sessionMessage struct {
	sessionID string
	data      []byte
}

// NewHub creates a new Hub. Call Run in a goroutine before use.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		connections: make(map[string]*Connection),
		sessions:    make(map[string]map[string]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		broadcast:   make(chan *sessionMessage, 256),
		log:         log,
	}
}

// Run starts the hub's main loop.
func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.connections[conn.ID] = conn
			if conn.SessionID != "" {
				if h.sessions[conn.SessionID] == nil {
					h.sessions[conn.SessionID] = make(map[string]bool)
				}
				h.sessions[conn.SessionID][conn.ID] = true
			}
			h.mu.Unlock()
			h.log.Debug("ws connection registered", "conn_id", conn.ID, "session_id", conn.SessionID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.connections[conn.ID]; ok {
				delete(h.connections, conn.ID)
				if conn.SessionID != "" && h.sessions[conn.SessionID] != nil {
					delete(h.sessions[conn.SessionID], conn.ID)
					if len(h.sessions[conn.SessionID]) == 0 {
						delete(h.sessions, conn.SessionID)
					}
				}
				close(conn.Send)
			}
			h.mu.Unlock()
			h.log.Debug("ws connection unregistered", "conn_id", conn.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for connID := range h.sessions[msg.sessionID] {
				conn, exists := h.connections[connID]
				if !exists {
					continue
				}
				select {
				case conn.Send <- msg.data:
				default:
					// Buffer full, drop the slow consumer.
					h.log.Warn("ws send buffer full, closing", "conn_id", connID)
					go h.Unregister(conn)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish broadcasts a session event to every subscriber of its session.
func (h *Hub) Publish(ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("failed to marshal event", "session_id", ev.SessionID, "error", err)
		return
	}
	h.broadcast <- &sessionMessage{sessionID: ev.SessionID, data: data}
}

// NewConnection creates a connection subscribed to the given session.
func (h *Hub) NewConnection(ws *websocket.Conn, sessionID string) *Connection {
	return &Connection{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, sendBufferSize),
		hub:       h,
	}
}

// Register registers a connection with the hub.
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister unregisters a connection from the hub.
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// ConnectionCount returns the number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// HasSubscribers reports whether any connection watches the session.
func (h *Hub) HasSubscribers(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID]) > 0
}

// WritePump pumps outbound messages and pings to the peer until the
// send channel closes or a write fails.
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump consumes inbound frames until the peer disconnects, then
// unregisters the connection. Client frames carry no meaning here.
func (c *Connection) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}
