// Package live serves formula evaluation sessions over websockets. Each
// connection owns a private grid, so nothing is shared between clients.
package live

// Hub tracks the set of connected clients. Registration goes through
// channels so only the Run goroutine touches the client map.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run owns the client map. It never returns; start it on its own
// goroutine before serving connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		}
	}
}
