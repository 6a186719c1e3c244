package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	wsPkg "github.com/swangtree/poolr8ter/pkg/websocket"
)

type Handler struct {
	Hub *wsPkg.Hub
}

func NewHandler(hub *wsPkg.Hub) *Handler {
	return &Handler{
		Hub: hub,
	}
}

// ServeWS upgrades the connection and subscribes it to the match feed.
// The feed is read-only: client messages are drained and ignored.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsPkg.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Feed upgrade failed: %v", err)
		return
	}

	client := &wsPkg.Client{
		RemoteAddr: conn.RemoteAddr().String(),
		Conn:       conn,
		Send:       make(chan []byte, 8),
	}
	h.Hub.AddClient(client)

	go h.read(client)
	go h.write(client)
}

func (h *Handler) read(c *wsPkg.Client) {
	defer func() {
		h.Hub.RemoveClient(c)
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Handler) write(c *wsPkg.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("Error writing to feed client %s: %v", c.RemoteAddr, err)
			break
		}
	}
}
