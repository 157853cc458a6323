package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/boredgamer/platform/models"
)

const MessageTypeBracketUpdated = "BRACKET_UPDATED"

// Message is the envelope pushed to websocket subscribers.
type Message struct {
	Type    string      `json:"type"`
	RoomID  string      `json:"room_id,omitempty"`
	Payload interface{} `json:"payload"`
}

// Hub fans bracket updates out to websocket clients grouped into rooms,
// one room per tournament.
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
			h.logger.Info("websocket client registered",
				slog.String("room", client.Room),
				slog.Int("clients", len(h.rooms[client.Room])))
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
					h.logger.Info("websocket client unregistered", slog.String("room", client.Room))
				}
			}
			h.mu.Unlock()
		}
	}
}

// RoomID builds the room name for a tournament.
func RoomID(tournamentID string) string {
	return "tournament_" + tournamentID
}

// BroadcastBracketUpdate pushes the current bracket list to every client
// watching the tournament. Implements services.BracketBroadcaster.
func (h *Hub) BroadcastBracketUpdate(tournamentID string, matches []models.Match) {
	h.broadcastToRoom(RoomID(tournamentID), Message{
		Type:    MessageTypeBracketUpdated,
		RoomID:  RoomID(tournamentID),
		Payload: map[string]interface{}{"brackets": matches},
	})
}

func (h *Hub) broadcastToRoom(roomID string, message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal websocket message",
			slog.String("room", roomID), slog.Any("error", err))
		return
	}

	for client := range clients {
		client.trySend(data)
	}
}
