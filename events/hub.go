package events

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event describes one entity mutation. It is fanned out to every feed
// connection the owning user has open.
type Event struct {
	UserID string `json:"-"`
	Entity string `json:"entity"` // "company", "contact", ...
	Action string `json:"action"` // "created", "updated", "deleted"
	ID     string `json:"id"`
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan Event
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			slog.Info("Event feed client registered", "user_id", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			slog.Info("Event feed client unregistered", "user_id", client.UserID)

		case event := <-h.events:
			payload, err := json.Marshal(event)
			if err != nil {
				slog.Error("Failed to marshal event", "error", err)
				continue
			}
			h.mu.Lock()
			for client := range h.clients {
				if client.UserID != event.UserID {
					continue
				}
				select {
				case client.send <- payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues an event for delivery. Delivery is best effort; a full
// queue drops the event rather than blocking the request that caused it.
func (h *Hub) Publish(event Event) {
	select {
	case h.events <- event:
	default:
		slog.Warn("Event feed queue full, dropping event", "entity", event.Entity, "action", event.Action)
	}
}
