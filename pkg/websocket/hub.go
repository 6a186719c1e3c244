package websocket

import (
	"log"
	"sync"
)

// Hub fans committed-match events out to every connected client.
type Hub struct {
	clients map[*Client]bool
	mu      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
	}
}

func (h *Hub) AddClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = true
	log.Printf("Feed client %s connected", c.RemoteAddr)
}

// RemoveClient drops the client and closes its send channel so the
// write pump exits. Removing the same client twice is a no-op.
func (h *Hub) RemoveClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.Send)
	log.Printf("Feed client %s disconnected", c.RemoteAddr)
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

// Broadcast sends the message to every client. Clients whose send
// buffer is full are skipped so one slow reader cannot stall the rest.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}
