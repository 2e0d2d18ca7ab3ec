package handlers

import (
	"net/http"

	"github.com/lavelada/velada-votes/registry"
)

// CombatHandler exposes the static combat card.
type CombatHandler struct {
	reg *registry.Registry
}

func NewCombatHandler(reg *registry.Registry) *CombatHandler {
	return &CombatHandler{reg: reg}
}

type combatView struct {
	registry.Combat
	Fighter1Avatar string `json:"fighter1_avatar"`
	Fighter2Avatar string `json:"fighter2_avatar"`
}

// ListCombats handles GET /combats.
func (h *CombatHandler) ListCombats(w http.ResponseWriter, r *http.Request) {
	combats := h.reg.Combats()
	views := make([]combatView, 0, len(combats))
	for _, combat := range combats {
		views = append(views, combatView{
			Combat:         combat,
			Fighter1Avatar: registry.AvatarURL(combat.Fighter1, registry.AvatarSizeCards),
			Fighter2Avatar: registry.AvatarURL(combat.Fighter2, registry.AvatarSizeCards),
		})
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"combats": views})
}

// GetCombat handles GET /combats/{combatID}.
func (h *CombatHandler) GetCombat(w http.ResponseWriter, r *http.Request) {
	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	combat, ok := h.reg.GetCombatByID(combatID)
	if !ok {
		notFoundResponse(w, "combat not found")
		return
	}

	successResponse(w, http.StatusOK, combatView{
		Combat:         combat,
		Fighter1Avatar: registry.AvatarURL(combat.Fighter1, registry.AvatarSizeCards),
		Fighter2Avatar: registry.AvatarURL(combat.Fighter2, registry.AvatarSizeCards),
	})
}
