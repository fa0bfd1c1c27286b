package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/appetiteclub/portal/internal/logger"
)

// Message is the frame pushed to websocket clients.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

const EventNotification = "notification"

const (
	writeWait  = 10 * time.Second
	sendBuffer = 32
)

// peer is one websocket connection. Frames are queued on send and written by
// the peer's own goroutine, so a slow browser never holds the hub lock.
type peer struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub keeps the open websocket connections of every browser client.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]map[*peer]bool
	upgrader websocket.Upgrader
	logger   logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &Hub{
		clients: make(map[string]map[*peer]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: log,
	}
}

// ServeWS upgrades the request and keeps the connection registered under
// clientID until the peer goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, clientID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	p := &peer{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.clients[clientID] == nil {
		h.clients[clientID] = make(map[*peer]bool)
	}
	h.clients[clientID][p] = true
	h.mu.Unlock()

	defer h.drop(clientID, p)
	go h.writeLoop(clientID, p)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(clientID string, p *peer) {
	for data := range p.send {
		p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping websocket client", "client", clientID, "error", err)
			p.conn.Close()
			return
		}
	}
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	p.conn.WriteMessage(websocket.CloseMessage, []byte{})
	p.conn.Close()
}

func (h *Hub) drop(clientID string, p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(clientID, p)
}

// dropLocked must be called with h.mu held.
func (h *Hub) dropLocked(clientID string, p *peer) {
	if !h.clients[clientID][p] {
		return
	}
	delete(h.clients[clientID], p)
	close(p.send)
	if len(h.clients[clientID]) == 0 {
		delete(h.clients, clientID)
	}
}

// SendTo queues msg for every connection of one client.
func (h *Hub) SendTo(clientID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("cannot encode websocket message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.enqueue(clientID, data)
}

// Broadcast queues msg for every connected client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("cannot encode websocket message", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for clientID := range h.clients {
		h.enqueue(clientID, data)
	}
}

// enqueue must be called with h.mu held. A peer whose queue is full has
// stopped reading and is dropped.
func (h *Hub) enqueue(clientID string, data []byte) {
	for p := range h.clients[clientID] {
		select {
		case p.send <- data:
		default:
			h.logger.Debug("dropping stalled websocket client", "client", clientID)
			h.dropLocked(clientID, p)
			p.conn.Close()
		}
	}
}

// Connected returns the number of open connections for clientID.
func (h *Hub) Connected(clientID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[clientID])
}

// For returns a Notifier that pushes to one client.
func (h *Hub) For(clientID string) Notifier {
	return NotifierFunc(func(ctx context.Context, n Notification) {
		h.SendTo(clientID, Message{Event: EventNotification, Payload: n})
	})
}
