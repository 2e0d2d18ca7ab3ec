package models

import (
	"time"

	"github.com/lavelada/velada-votes/registry"
)

// Vote is one user's choice of fighter within one combat. Votes are never
// updated in place; the only mutation path is the bulk clear.
type Vote struct {
	ID            string               `json:"id"`
	UserID        string               `json:"user_id"`
	ParticipantID registry.Participant `json:"participant_id"`
	CombatID      int                  `json:"combat_id"`
	CreatedAt     time.Time            `json:"created_at"`
}

// CombatWinner is the administratively recorded outcome of a combat.
// At most one exists per combat; setting a new one replaces the old.
type CombatWinner struct {
	CombatID      int                  `json:"combat_id"`
	ParticipantID registry.Participant `json:"participant_id"`
	CreatedAt     time.Time            `json:"created_at"`
}

type VoteResult struct {
	ParticipantID registry.Participant `json:"participant_id"`
	VoteCount     int                  `json:"vote_count"`
}

type CombatVoteResults struct {
	CombatID       int                   `json:"combat_id"`
	Fighter1       registry.Participant  `json:"fighter1"`
	Fighter2       registry.Participant  `json:"fighter2"`
	Fighter1Votes  int                   `json:"fighter1_votes"`
	Fighter2Votes  int                   `json:"fighter2_votes"`
	TotalVotes     int                   `json:"total_votes"`
	WinningFighter *registry.Participant `json:"winning_fighter,omitempty"`
}
