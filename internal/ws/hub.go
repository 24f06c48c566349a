package ws

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub fans dashboard events out to connected clients. Events are scoped to
// a user id so one user's dashboard never sees another's updates.
type Hub struct {
	clients    map[*Client]struct{}
	publish    chan event
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *log.Logger
}

type event struct {
	userID  uuid.UUID
	payload []byte
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		publish:    make(chan event, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mutex.Unlock()
			if h.logger != nil {
				h.logger.Printf("WS connected | user_id=%s total_clients=%d", client.userID, total)
			}

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()

		case evt := <-h.publish:
			h.mutex.RLock()
			targets := make([]*Client, 0)
			for c := range h.clients {
				if c.userID == evt.userID {
					targets = append(targets, c)
				}
			}
			h.mutex.RUnlock()

			for _, client := range targets {
				select {
				case client.send <- evt.payload:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// Publish queues an event for one user's clients; drops when the buffer is
// full rather than blocking the caller.
func (h *Hub) Publish(userID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.publish <- event{userID: userID, payload: payload}:
	default:
		if h.logger != nil {
			h.logger.Printf("WS publish dropped | reason=buffer_full")
		}
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}
