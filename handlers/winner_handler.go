package handlers

import (
	"net/http"

	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/services"
)

type WinnerHandler struct {
	winners *services.WinnerService
}

func NewWinnerHandler(winners *services.WinnerService) *WinnerHandler {
	return &WinnerHandler{winners: winners}
}

type setWinnerRequest struct {
	ParticipantID string `json:"participant_id"`
}

// SetWinner handles PUT /combats/{combatID}/winner (admin only).
func (h *WinnerHandler) SetWinner(w http.ResponseWriter, r *http.Request) {
	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	var req setWinnerRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	winner, err := h.winners.SetWinner(r.Context(), combatID, registry.Participant(req.ParticipantID))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"winner": winner})
}

// GetWinner handles GET /combats/{combatID}/winner. The winner is null while
// the combat is still open.
func (h *WinnerHandler) GetWinner(w http.ResponseWriter, r *http.Request) {
	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	winner, err := h.winners.GetWinner(r.Context(), combatID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"winner": winner})
}

// ListWinners handles GET /winners.
func (h *WinnerHandler) ListWinners(w http.ResponseWriter, r *http.Request) {
	winners, err := h.winners.ListWinners(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"winners": winners})
}

// DeleteWinner handles DELETE /combats/{combatID}/winner (admin only).
// Idempotent: deleting an absent winner succeeds.
func (h *WinnerHandler) DeleteWinner(w http.ResponseWriter, r *http.Request) {
	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	if err := h.winners.DeleteWinner(r.Context(), combatID); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

type clearWinnersRequest struct {
	Confirm bool `json:"confirm"`
}

// ClearWinners handles DELETE /winners (admin only). Always requires an
// explicit confirm flag.
func (h *WinnerHandler) ClearWinners(w http.ResponseWriter, r *http.Request) {
	var req clearWinnersRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, err)
			return
		}
	}

	if !req.Confirm {
		mapServiceErrorToHTTP(w, services.ErrNotConfirmed)
		return
	}

	if err := h.winners.ClearAllWinners(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"cleared": true})
}
