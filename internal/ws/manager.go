// Package ws pushes live events to connected clients. Message delivery
// itself goes through the HTTP API and the store; the socket only carries
// notifications so the UI can react without polling.
package ws

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Event types pushed to clients
const (
	// EventChatReady tells the client a conversation became available,
	// e.g. after an accepted friend request.
	EventChatReady = "chat_ready"
)

// Event is the wire format of a pushed notification
type Event struct {
	Type   string    `json:"type"`
	ChatID uuid.UUID `json:"chat_id"`
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
)

// Client represents a connected websocket client
type Client struct {
	UserID uuid.UUID
	socket *websocket.Conn
	send   chan []byte
}

// Manager maintains the set of connected clients, one per user
type Manager struct {
	logger     *zap.SugaredLogger
	clients    map[uuid.UUID]*Client
	register   chan *Client
	unregister chan *Client
	mutex      sync.Mutex
}

func NewManager(logger *zap.SugaredLogger) *Manager {
	return &Manager{
		logger:     logger,
		clients:    make(map[uuid.UUID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes connect/disconnect events. Call it in its own goroutine.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.register:
			m.mutex.Lock()
			if old, ok := m.clients[client.UserID]; ok {
				close(old.send)
			}
			m.clients[client.UserID] = client
			m.mutex.Unlock()
			m.logger.Debugw("client connected", "user", client.UserID)
		case client := <-m.unregister:
			m.mutex.Lock()
			if current, ok := m.clients[client.UserID]; ok && current == client {
				delete(m.clients, client.UserID)
				close(client.send)
			}
			m.mutex.Unlock()
			m.logger.Debugw("client disconnected", "user", client.UserID)
		}
	}
}

// SendToUser delivers a payload to the user's client, if connected. A client
// with a full send buffer is dropped rather than blocked on.
func (m *Manager) SendToUser(userID uuid.UUID, payload []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	client, ok := m.clients[userID]
	if !ok {
		return
	}
	select {
	case client.send <- payload:
	default:
		delete(m.clients, userID)
		close(client.send)
		m.logger.Warnw("client send buffer full, dropping connection", "user", userID)
	}
}

// ConversationReady implements chat.Notifier
func (m *Manager) ConversationReady(userIDs []uuid.UUID, conversationID uuid.UUID) {
	payload, err := json.Marshal(Event{Type: EventChatReady, ChatID: conversationID})
	if err != nil {
		m.logger.Errorw("encode event", "error", err)
		return
	}
	for _, id := range userIDs {
		m.SendToUser(id, payload)
	}
}

// HandleWebSocket upgrades the request and attaches the client. The caller
// must have authenticated the request and put userID in the context.
func (m *Manager) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	userUUID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user identification"})
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// CORS already gates browser requests at the router level
			return true
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		m.logger.Warnw("websocket upgrade failed", "user", userUUID, "error", err)
		return
	}

	client := &Client{
		UserID: userUUID,
		socket: conn,
		send:   make(chan []byte, 256),
	}
	m.register <- client

	go client.writePump(m)
	go client.readPump(m)
}

// readPump drains the connection; clients do not send anything meaningful,
// the read loop exists to notice disconnects and answer pings.
func (c *Client) readPump(m *Manager) {
	defer func() {
		m.unregister <- c
		c.socket.Close()
	}()

	c.socket.SetReadLimit(4 * 1024)
	c.socket.SetReadDeadline(time.Now().Add(pongWait))
	c.socket.SetPongHandler(func(string) error {
		c.socket.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.socket.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.logger.Debugw("read error", "user", c.UserID, "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump(m *Manager) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.socket.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.socket.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.socket.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.socket.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.socket.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
