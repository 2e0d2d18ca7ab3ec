package handlers

import (
	"net/http"

	"github.com/lavelada/velada-votes/middleware"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/services"
)

type VoteHandler struct {
	voting *services.VotingService
}

func NewVoteHandler(voting *services.VotingService) *VoteHandler {
	return &VoteHandler{voting: voting}
}

type castVoteRequest struct {
	CombatID      int    `json:"combat_id"`
	ParticipantID string `json:"participant_id"`
}

// CastVote handles POST /votes. The caller's identity comes from the token,
// never from the body.
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	var req castVoteRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, err)
		return
	}

	vote, err := h.voting.CastVote(r.Context(), userID, req.CombatID, registry.Participant(req.ParticipantID))
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusCreated, map[string]interface{}{"vote": vote})
}

// GetVoteState handles GET /combats/{combatID}/vote: the caller's own vote,
// or null when they have not voted.
func (h *VoteHandler) GetVoteState(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, "authentication required")
		return
	}

	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	vote, err := h.voting.GetUserVote(r.Context(), userID, combatID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"vote": vote})
}

type clearVotesRequest struct {
	Confirm bool `json:"confirm"`
}

// ClearVotes handles DELETE /votes. The route is admin-gated; the handler
// still re-checks, and a caller without the admin flag must confirm.
func (h *VoteHandler) ClearVotes(w http.ResponseWriter, r *http.Request) {
	var req clearVotesRequest
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &req); err != nil {
			badRequestResponse(w, err)
			return
		}
	}

	if !middleware.IsAdminFromContext(r.Context()) && !req.Confirm {
		mapServiceErrorToHTTP(w, services.ErrNotConfirmed)
		return
	}

	if err := h.voting.ClearVotes(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"cleared": true})
}

// GetVoteResults handles GET /results.
func (h *VoteHandler) GetVoteResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.voting.GetVoteResults(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	total, err := h.voting.GetTotalVotes(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{
		"results":     results,
		"total_votes": total,
	})
}

// GetAllCombatResults handles GET /results/combats.
func (h *VoteHandler) GetAllCombatResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.voting.GetAllCombatVoteResults(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, map[string]interface{}{"combats": results})
}

// GetCombatResults handles GET /combats/{combatID}/results.
func (h *VoteHandler) GetCombatResults(w http.ResponseWriter, r *http.Request) {
	combatID, err := getCombatIDFromURL(r)
	if err != nil {
		badRequestResponse(w, err)
		return
	}

	results, err := h.voting.GetCombatVoteResults(r.Context(), combatID)
	if err != nil {
		mapServiceErrorToHTTP(w, err)
		return
	}

	successResponse(w, http.StatusOK, results)
}
