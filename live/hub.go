// Package live pushes winner announcements to websocket clients watching a
// combat. Vote tallies are never pushed; clients poll the results endpoints.
package live

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

const (
	EventWinnerSet     = "WINNER_SET"
	EventWinnerCleared = "WINNER_CLEARED"
)

type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	Room    string      `json:"room,omitempty"`
}

// RoomForCombat names the hub room that carries one combat's announcements.
func RoomForCombat(combatID int) string {
	return fmt.Sprintf("combat_%d", combatID)
}

// Hub fans events out to clients grouped by room. Run must be started in its
// own goroutine before clients register.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms  map[string]map[*Client]bool
	mu     sync.RWMutex
	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.logger.Debug("client registered", slog.String("room", client.Room), slog.Int("clients", len(h.rooms[client.Room])))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if clients, ok := h.rooms[client.Room]; ok {
				if _, okClient := clients[client]; okClient {
					client.closeSend()
					delete(clients, client)
					if len(clients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastToRoom delivers an event to every client in the room. Clients
// whose send buffer is full are skipped rather than blocked on.
func (h *Hub) BroadcastToRoom(room string, event Event) {
	event.Room = room

	messageBytes, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("room", room), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[room] {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.send <- messageBytes:
		default:
			h.logger.Warn("client send buffer full, dropping event", slog.String("room", room))
		}
		client.mu.Unlock()
	}
}
