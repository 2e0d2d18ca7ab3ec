package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/repositories"
	"golang.org/x/sync/errgroup"
)

// VotingService validates and executes vote casts against the combat card and
// aggregates results. It holds no state of its own; every results query reads
// the store fresh.
type VotingService struct {
	reg    *registry.Registry
	votes  repositories.VoteRepository
	logger *slog.Logger
}

func NewVotingService(reg *registry.Registry, votes repositories.VoteRepository, logger *slog.Logger) *VotingService {
	return &VotingService{
		reg:    reg,
		votes:  votes,
		logger: logger,
	}
}

// CastVote records one user's vote for a fighter in a combat. The checks run
// in a fixed order so callers get deterministic error kinds and the store is
// not touched until the input is known to be valid:
//
//  1. participant is on the card
//  2. combat exists
//  3. participant is one of that combat's two fighters
//  4. user has not voted in that combat yet
//
// The read in step 4 is only an early exit. Two concurrent casts for the same
// (user, combat) can both pass it, so the unique index on the votes table is
// the real guard; its violation is surfaced as ErrAlreadyVoted.
func (s *VotingService) CastVote(ctx context.Context, userID string, combatID int, participantID registry.Participant) (*models.Vote, error) {
	if !s.reg.IsValidParticipant(participantID) {
		return nil, ErrInvalidParticipant
	}

	combat, ok := s.reg.GetCombatByID(combatID)
	if !ok {
		return nil, ErrCombatNotFound
	}

	if participantID != combat.Fighter1 && participantID != combat.Fighter2 {
		return nil, ErrParticipantNotInCombat
	}

	_, err := s.votes.FindByUserAndCombat(ctx, userID, combatID)
	if err == nil {
		return nil, ErrAlreadyVoted
	}
	if !errors.Is(err, repositories.ErrVoteNotFound) {
		return nil, fmt.Errorf("failed to check existing vote: %w", err)
	}

	vote := &models.Vote{
		UserID:        userID,
		ParticipantID: participantID,
		CombatID:      combatID,
	}
	if err := s.votes.Create(ctx, vote); err != nil {
		if errors.Is(err, repositories.ErrVoteConflict) {
			return nil, ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to create vote: %w", err)
	}

	s.logger.Info("vote cast",
		slog.String("user_id", userID),
		slog.Int("combat_id", combatID),
		slog.String("participant_id", string(participantID)),
	)
	return vote, nil
}

// GetUserVote returns the caller's vote for a combat, or nil when they have
// not voted yet.
func (s *VotingService) GetUserVote(ctx context.Context, userID string, combatID int) (*models.Vote, error) {
	if _, ok := s.reg.GetCombatByID(combatID); !ok {
		return nil, ErrCombatNotFound
	}

	vote, err := s.votes.FindByUserAndCombat(ctx, userID, combatID)
	if err != nil {
		if errors.Is(err, repositories.ErrVoteNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user vote: %w", err)
	}
	return vote, nil
}

func (s *VotingService) HasVoted(ctx context.Context, userID string, combatID int) (bool, error) {
	vote, err := s.GetUserVote(ctx, userID, combatID)
	if err != nil {
		return false, err
	}
	return vote != nil, nil
}

// GetVoteResults returns a count for every fighter on the card, including
// those with zero votes, sorted by descending count. Ties are broken by
// participant ID ascending so the order is deterministic.
func (s *VotingService) GetVoteResults(ctx context.Context) ([]models.VoteResult, error) {
	counts, err := s.votes.CountByParticipant(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate vote counts: %w", err)
	}

	participants := s.reg.Participants()
	results := make([]models.VoteResult, 0, len(participants))
	for _, p := range participants {
		results = append(results, models.VoteResult{
			ParticipantID: p,
			VoteCount:     counts[p],
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		return results[i].ParticipantID < results[j].ParticipantID
	})
	return results, nil
}

// GetCombatVoteResults aggregates both fighters' counts for one combat.
// WinningFighter is set only on a strict majority; a tie leaves it nil.
func (s *VotingService) GetCombatVoteResults(ctx context.Context, combatID int) (*models.CombatVoteResults, error) {
	combat, ok := s.reg.GetCombatByID(combatID)
	if !ok {
		return nil, ErrCombatNotFound
	}

	fighter1Votes, err := s.votes.CountByParticipantAndCombat(ctx, combat.Fighter1, combatID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes for %s: %w", combat.Fighter1, err)
	}
	fighter2Votes, err := s.votes.CountByParticipantAndCombat(ctx, combat.Fighter2, combatID)
	if err != nil {
		return nil, fmt.Errorf("failed to count votes for %s: %w", combat.Fighter2, err)
	}

	results := &models.CombatVoteResults{
		CombatID:      combatID,
		Fighter1:      combat.Fighter1,
		Fighter2:      combat.Fighter2,
		Fighter1Votes: fighter1Votes,
		Fighter2Votes: fighter2Votes,
		TotalVotes:    fighter1Votes + fighter2Votes,
	}
	if fighter1Votes > fighter2Votes {
		results.WinningFighter = &combat.Fighter1
	} else if fighter2Votes > fighter1Votes {
		results.WinningFighter = &combat.Fighter2
	}
	return results, nil
}

// GetAllCombatVoteResults aggregates every combat on the card concurrently.
func (s *VotingService) GetAllCombatVoteResults(ctx context.Context) ([]*models.CombatVoteResults, error) {
	combats := s.reg.Combats()
	results := make([]*models.CombatVoteResults, len(combats))

	g, gCtx := errgroup.WithContext(ctx)
	for i, combat := range combats {
		i, combat := i, combat
		g.Go(func() error {
			combatResults, err := s.GetCombatVoteResults(gCtx, combat.ID)
			if err != nil {
				return err
			}
			results[i] = combatResults
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *VotingService) GetTotalVotes(ctx context.Context) (int, error) {
	return s.votes.CountAll(ctx)
}

// ClearVotes deletes every vote. Clearing an empty store succeeds.
func (s *VotingService) ClearVotes(ctx context.Context) error {
	if err := s.votes.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	s.logger.Info("all votes cleared")
	return nil
}
