package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/lavelada/velada-votes/models"
)

func TestCastVoteRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/votes", "", map[string]interface{}{
		"combat_id":      1,
		"participant_id": "peereira",
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}

	// A garbage token is rejected the same way.
	w = env.do(t, http.MethodPost, "/votes", "not-a-jwt", map[string]interface{}{
		"combat_id":      1,
		"participant_id": "peereira",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestCastVoteEndpoint(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "ana", false)
	token := env.tokenFor(t, user)

	w := env.do(t, http.MethodPost, "/votes", token, map[string]interface{}{
		"combat_id":      1,
		"participant_id": "peereira",
	})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, http.StatusCreated, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if !resp.Success {
		t.Fatalf("expected success envelope, got error %q", resp.Error)
	}

	var vote models.Vote
	if err := json.Unmarshal(resp.Data["vote"], &vote); err != nil {
		t.Fatalf("failed to decode vote: %v", err)
	}
	if vote.UserID != user.ID {
		t.Errorf("vote.UserID = %q, want %q (identity must come from the token)", vote.UserID, user.ID)
	}
	if vote.ParticipantID != "peereira" || vote.CombatID != 1 {
		t.Errorf("unexpected vote: %+v", vote)
	}
}

func TestCastVoteDuplicateReturnsConflict(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, env.createUser(t, "ana", false))

	body := map[string]interface{}{"combat_id": 1, "participant_id": "peereira"}
	if w := env.do(t, http.MethodPost, "/votes", token, body); w.Code != http.StatusCreated {
		t.Fatalf("first cast: status = %d, want %d", w.Code, http.StatusCreated)
	}

	// Second cast by the same user, even for the other fighter.
	w := env.do(t, http.MethodPost, "/votes", token, map[string]interface{}{
		"combat_id":      1,
		"participant_id": "rivaldios",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusConflict)
	}
	resp := decodeEnvelope(t, w)
	if resp.Success {
		t.Error("expected success=false on duplicate vote")
	}
}

func TestCastVoteRejectsBadPairings(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, env.createUser(t, "ana", false))

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{"unknown fighter", map[string]interface{}{"combat_id": 1, "participant_id": "ibai"}, http.StatusBadRequest},
		{"unknown combat", map[string]interface{}{"combat_id": 99, "participant_id": "peereira"}, http.StatusNotFound},
		{"fighter not in combat", map[string]interface{}{"combat_id": 1, "participant_id": "grefg"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/votes", token, tt.body)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestGetVoteStateEndpoint(t *testing.T) {
	env := newTestEnv(t)
	token := env.tokenFor(t, env.createUser(t, "ana", false))

	w := env.do(t, http.MethodGet, "/combats/1/vote", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decodeEnvelope(t, w)
	if string(resp.Data["vote"]) != "null" {
		t.Errorf("expected null vote before casting, got %s", resp.Data["vote"])
	}

	env.do(t, http.MethodPost, "/votes", token, map[string]interface{}{
		"combat_id":      1,
		"participant_id": "rivaldios",
	})

	w = env.do(t, http.MethodGet, "/combats/1/vote", token, nil)
	resp = decodeEnvelope(t, w)
	var vote models.Vote
	if err := json.Unmarshal(resp.Data["vote"], &vote); err != nil {
		t.Fatalf("failed to decode vote: %v", err)
	}
	if vote.ParticipantID != "rivaldios" {
		t.Errorf("vote.ParticipantID = %q, want rivaldios", vote.ParticipantID)
	}
}

func TestClearVotesRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	userToken := env.tokenFor(t, env.createUser(t, "ana", false))
	adminToken := env.tokenFor(t, env.createUser(t, "root", true))

	env.do(t, http.MethodPost, "/votes", userToken, map[string]interface{}{
		"combat_id":      1,
		"participant_id": "peereira",
	})

	if w := env.do(t, http.MethodDelete, "/votes", userToken, nil); w.Code != http.StatusForbidden {
		t.Errorf("non-admin clear: status = %d, want %d", w.Code, http.StatusForbidden)
	}

	w := env.do(t, http.MethodDelete, "/votes", adminToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin clear: status = %d, want %d (body: %s)", w.Code, http.StatusOK, w.Body.String())
	}

	// Votes are gone; the user can vote again.
	if w := env.do(t, http.MethodPost, "/votes", userToken, map[string]interface{}{
		"combat_id":      1,
		"participant_id": "rivaldios",
	}); w.Code != http.StatusCreated {
		t.Errorf("re-vote after clear: status = %d, want %d", w.Code, http.StatusCreated)
	}
}

func TestResultsEndpoints(t *testing.T) {
	env := newTestEnv(t)
	for _, seed := range []struct {
		name        string
		participant string
	}{
		{"u1", "peereira"},
		{"u2", "peereira"},
		{"u3", "rivaldios"},
	} {
		token := env.tokenFor(t, env.createUser(t, seed.name, false))
		if w := env.do(t, http.MethodPost, "/votes", token, map[string]interface{}{
			"combat_id":      1,
			"participant_id": seed.participant,
		}); w.Code != http.StatusCreated {
			t.Fatalf("seed vote for %s failed with status %d", seed.name, w.Code)
		}
	}

	// Results are public, no token needed.
	w := env.do(t, http.MethodGet, "/results", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /results: status = %d, want %d", w.Code, http.StatusOK)
	}
	resp := decodeEnvelope(t, w)
	var total int
	if err := json.Unmarshal(resp.Data["total_votes"], &total); err != nil {
		t.Fatalf("failed to decode total_votes: %v", err)
	}
	if total != 3 {
		t.Errorf("total_votes = %d, want 3", total)
	}

	w = env.do(t, http.MethodGet, "/combats/1/results", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /combats/1/results: status = %d, want %d", w.Code, http.StatusOK)
	}
	resp = decodeEnvelope(t, w)
	var winning string
	if err := json.Unmarshal(resp.Data["winning_fighter"], &winning); err != nil {
		t.Fatalf("failed to decode winning_fighter: %v", err)
	}
	if winning != "peereira" {
		t.Errorf("winning_fighter = %q, want peereira", winning)
	}

	w = env.do(t, http.MethodGet, "/combats/99/results", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown combat results: status = %d, want %d", w.Code, http.StatusNotFound)
	}

	w = env.do(t, http.MethodGet, "/results/combats", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /results/combats: status = %d, want %d", w.Code, http.StatusOK)
	}
	resp = decodeEnvelope(t, w)
	var combats []json.RawMessage
	if err := json.Unmarshal(resp.Data["combats"], &combats); err != nil {
		t.Fatalf("failed to decode combats: %v", err)
	}
	if len(combats) != 7 {
		t.Errorf("expected results for all 7 combats, got %d", len(combats))
	}
}
