package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/crusade/game/engine"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// Event names carried by Message.Event
const (
	EventStateUpdate = "state_update"
	EventConnected   = "connected"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message represents a WebSocket message
type Message struct {
	SessionID string            `json:"session_id"`
	GameState *engine.GameState `json:"game_state,omitempty"`
	Event     string            `json:"event,omitempty"`
	Data      any               `json:"data,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub maintains the set of active clients and broadcasts messages. Only the
// Run loop mutates sessions; mu lets other goroutines read client counts.
type Hub struct {
	mu sync.RWMutex

	// Registered clients by session ID
	sessions map[string]map[*Client]bool

	// Outbound messages, fanned out by Run
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, engine.WebSocketBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop. It returns after Stop, closing every
// client connection.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop terminates Run. It is safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ServeWS upgrades the request and attaches the connection to a session.
// initial, when set, is the first message the client receives.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string, initial *engine.GameState) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, engine.WebSocketBufferSize),
		sessionID: sessionID,
	}

	if data, err := json.Marshal(&Message{SessionID: sessionID, GameState: initial, Event: EventConnected}); err == nil {
		client.send <- data
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// BroadcastToSession sends a game state update to all clients in a session
func (h *Hub) BroadcastToSession(sessionID string, state *engine.GameState) {
	h.enqueue(&Message{
		SessionID: sessionID,
		GameState: state,
		Event:     EventStateUpdate,
	})
}

// BroadcastEvent sends a custom event to all clients in a session
func (h *Hub) BroadcastEvent(sessionID string, event string, data any) {
	h.enqueue(&Message{
		SessionID: sessionID,
		Event:     event,
		Data:      data,
	})
}

func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// ClientCount returns the number of clients attached to a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// registerClient adds a client to a session
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true

	log.WithFields(log.Fields{
		"session": client.sessionID,
		"clients": len(h.sessions[client.sessionID]),
	}).Debug("websocket client registered")
}

// unregisterClient removes a client from a session
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)

	// Clean up empty sessions
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}

	log.WithFields(log.Fields{
		"session": client.sessionID,
		"clients": len(clients),
	}).Debug("websocket client unregistered")
}

// broadcastMessage sends a message to all clients in a session, dropping
// clients whose buffer is full
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.WithError(err).WithField("session", message.SessionID).Error("failed to marshal broadcast message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.sessions[message.SessionID] {
		select {
		case client.send <- data:
		default:
			h.removeLocked(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.sessions {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// readPump drains the connection so pongs and close frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// incoming messages are ignored
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.WithError(err).WithField("session", c.sessionID).Warn("websocket read error")
			}
			return
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
