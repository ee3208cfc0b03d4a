// Package websocket pushes fetch status updates to connected browsers.
package websocket

import (
	"context"
	"log/slog"
	"sync"

	"notioner/internal/domain/entity"
	"notioner/internal/observability/metrics"
)

// Message types sent over the socket.
const (
	MessageTypeWelcome = "welcome"
	MessageTypeStatus  = "status"
	MessageTypePing    = "ping"
	MessageTypePong    = "pong"
)

const (
	welcomeText     = "Welcome to the WebSocket server!"
	broadcastBuffer = 256

	timeLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Message is the JSON envelope of every frame.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// StatusData is the payload of a status message.
type StatusData struct {
	Status      string `json:"status"`
	LastFetched string `json:"lastFetched"`
	NextFetch   string `json:"nextFetch"`
}

// WelcomeData is the payload of the message sent right after connecting.
type WelcomeData struct {
	Message string `json:"message"`
}

// Hub keeps the set of connected clients and fans messages out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     *slog.Logger

	mu       sync.RWMutex
	stopOnce sync.Once
}

// NewHub creates a hub. Call RunWithContext to start it.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// RunWithContext serves registrations and broadcasts until ctx is done,
// then closes every client.
func (h *Hub) RunWithContext(ctx context.Context) {
	defer h.stop()

	for {
		// 終了要求を最優先で処理する
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

func (h *Hub) stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.closeAllClients()
	})
}

func (h *Hub) addClient(c *Client) {
	// welcome は登録前にキューへ積むので他のメッセージより先に届く
	c.send <- Message{Type: MessageTypeWelcome, Data: WelcomeData{Message: welcomeText}}

	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetWebsocketClients(n)
	h.logger.Info("websocket client connected", slog.Uint64("client_id", c.id), slog.Int("clients", n))
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if !h.clients[c] {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetWebsocketClients(n)
	h.logger.Info("websocket client disconnected", slog.Uint64("client_id", c.id), slog.Int("clients", n))
}

// broadcastToClients drops clients whose send buffer is full.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			h.logger.Warn("dropping slow websocket client", slog.Uint64("client_id", c.id))
		}
	}
	metrics.SetWebsocketClients(len(h.clients))
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.SetWebsocketClients(0)
}

// Register adds a client. It returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It is a no-op once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues msg for every connected client. Messages are dropped
// when the hub is stopped or its queue is full.
func (h *Hub) Broadcast(msg Message) {
	select {
	case <-h.done:
		return
	default:
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message", slog.String("type", msg.Type))
	}
}

// BroadcastStatus sends the fetch status to every client.
func (h *Hub) BroadcastStatus(st entity.FetchStatus) {
	h.Broadcast(NewStatusMessage(st))
}

// NewStatusMessage builds the status message for st.
func NewStatusMessage(st entity.FetchStatus) Message {
	return Message{
		Type: MessageTypeStatus,
		Data: StatusData{
			Status:      "Fetched",
			LastFetched: st.LastFetched.UTC().Format(timeLayout),
			NextFetch:   st.NextFetch.UTC().Format(timeLayout),
		},
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
