package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Deliverer pushes an encoded event to the connections of one user on this instance.
type Deliverer interface {
	Deliver(userID uuid.UUID, message []byte) int
}

// Hub tracks the websocket clients connected to this instance. A user may hold
// several connections, one per open tab.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
		logger:  logger,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok {
		userClients = make(map[*Client]struct{})
		h.clients[client.UserID] = userClients
	}
	userClients[client] = struct{}{}

	h.logger.Debug("realtime client connected", "userId", client.UserID, "connections", len(userClients))
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userClients, ok := h.clients[client.UserID]
	if !ok {
		return
	}

	if _, ok := userClients[client]; !ok {
		return
	}

	delete(userClients, client)
	if len(userClients) == 0 {
		delete(h.clients, client.UserID)
	}

	client.Close()
}

// Deliver enqueues message for every connection of userID and returns how many
// accepted it. Slow clients with a full buffer are skipped.
func (h *Hub) Deliver(userID uuid.UUID, message []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.clients[userID] {
		if client.enqueue(message) {
			delivered++
		} else {
			h.logger.Warn("realtime client buffer full, dropping message", "userId", userID, "clientId", client.ID)
		}
	}

	return delivered
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}

	return count
}

func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for userID, userClients := range h.clients {
		for client := range userClients {
			client.Close()
		}
		delete(h.clients, userID)
	}
}
