package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/lavelada/velada-votes/live"
	"github.com/lavelada/velada-votes/registry"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict to the frontend origin once it is fixed.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
	reg *registry.Registry
}

func NewWebSocketHandler(hub *live.Hub, reg *registry.Registry) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, reg: reg}
}

// ServeWs handles GET /ws/combats/{combatID}: a one-directional stream of
// winner announcements for one combat.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}
	if _, ok := h.reg.GetCombatByID(combatID); !ok {
		notFoundResponse(w, "combat not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		slog.Warn("websocket upgrade failed", slog.Int("combat_id", combatID), slog.Any("error", err))
		return
	}

	client := live.NewClient(h.hub, conn, live.RoomForCombat(combatID))
	client.Start()
}
