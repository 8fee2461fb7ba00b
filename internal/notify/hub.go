package notify

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"field-backend/internal/timeutil"
)

// Change is one live-update event pushed to connected clients. Field
// crews keep the todo and inspection lists open all day; pushing changes
// spares them manual refreshes.
type Change struct {
	Entity    string `json:"entity"`
	Name      string `json:"name"`
	Status    string `json:"status,omitempty"`
	Timestamp string `json:"timestamp"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans change events out to every connected websocket client.
type Hub struct {
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Change
}

func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Change, 64),
	}
	go h.run()
	return h
}

// BroadcastChange implements the notifier hook the services call after
// every successful write. Never blocks the caller: if the channel is
// full the event is dropped, clients resync on their next fetch anyway.
func (h *Hub) BroadcastChange(entity, name, status string) {
	change := Change{
		Entity:    entity,
		Name:      name,
		Status:    status,
		Timestamp: timeutil.Now().Format(timeutil.DateTimeLayout),
	}
	select {
	case h.broadcast <- change:
	default:
		log.Printf("[Notify] dropped change event for %s %s", entity, name)
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Notify] websocket upgrade error:", err)
		return
	}
	defer conn.Close()

	h.clientsMux.Lock()
	h.clients[conn] = true
	h.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			h.clientsMux.Lock()
			delete(h.clients, conn)
			h.clientsMux.Unlock()
			break
		}
	}
}

func (h *Hub) run() {
	for change := range h.broadcast {
		h.clientsMux.Lock()
		for client := range h.clients {
			if err := client.WriteJSON(change); err != nil {
				client.Close()
				delete(h.clients, client)
			}
		}
		h.clientsMux.Unlock()
	}
}
