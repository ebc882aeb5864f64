package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Message is the envelope pushed to dashboard sockets.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type roomMessage struct {
	restaurantID uuid.UUID
	msg          Message
}

// Hub fans messages out to the sockets of one restaurant.
type Hub struct {
	// Connected clients by restaurant ID
	rooms map[uuid.UUID]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	done       chan struct{}

	mu  sync.RWMutex
	log logrus.FieldLogger
}

// NewHub creates a Hub. Call Run to start it.
func NewHub(log logrus.FieldLogger) *Hub {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Hub{
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil

		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.restaurantID] == nil {
				h.rooms[client.restaurantID] = make(map[*Client]bool)
			}
			h.rooms[client.restaurantID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case rm := <-h.broadcast:
			data, err := json.Marshal(rm.msg)
			if err != nil {
				h.log.WithError(err).Error("ws: marshal message")
				continue
			}
			h.mu.Lock()
			for client := range h.rooms[rm.restaurantID] {
				select {
				case client.send <- data:
				default:
					// Slow consumer
					h.drop(client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop removes a client and closes its send channel. Caller holds mu.
func (h *Hub) drop(c *Client) {
	clients, ok := h.rooms[c.restaurantID]
	if !ok || !clients[c] {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.restaurantID)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.rooms {
		for c := range clients {
			h.drop(c)
		}
	}
}

// BroadcastToRestaurant queues msg for every socket of the restaurant.
// Messages are dropped when the queue is full or the hub has stopped.
func (h *Hub) BroadcastToRestaurant(restaurantID uuid.UUID, msg Message) {
	select {
	case h.broadcast <- roomMessage{restaurantID: restaurantID, msg: msg}:
	case <-h.done:
	default:
		h.log.WithField("restaurant_id", restaurantID).Warn("ws: broadcast queue full, message dropped")
	}
}

// ClientCount returns the number of sockets open for a restaurant.
func (h *Hub) ClientCount(restaurantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[restaurantID])
}

func (h *Hub) join(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}
