package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lavelada/velada-votes/live"
	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/repositories"
)

// WinnerService records and clears combat outcomes. Admin authorization is
// enforced at the HTTP layer; the service still re-validates combat and
// participant consistency so it stays safe when invoked without that gate.
type WinnerService struct {
	reg     *registry.Registry
	winners repositories.WinnerRepository
	hub     *live.Hub // optional; nil disables announcements
	logger  *slog.Logger
}

func NewWinnerService(reg *registry.Registry, winners repositories.WinnerRepository, hub *live.Hub, logger *slog.Logger) *WinnerService {
	return &WinnerService{
		reg:     reg,
		winners: winners,
		hub:     hub,
		logger:  logger,
	}
}

// SetWinner records the winner of a combat, replacing any previous record.
// The store upserts on combat_id so concurrent admin actions cannot leave two
// winners for one combat; the last write wins.
func (s *WinnerService) SetWinner(ctx context.Context, combatID int, participantID registry.Participant) (*models.CombatWinner, error) {
	combat, ok := s.reg.GetCombatByID(combatID)
	if !ok {
		return nil, ErrCombatNotFound
	}
	if participantID != combat.Fighter1 && participantID != combat.Fighter2 {
		return nil, ErrParticipantNotInCombat
	}

	winner := &models.CombatWinner{
		CombatID:      combatID,
		ParticipantID: participantID,
	}
	if err := s.winners.Upsert(ctx, winner); err != nil {
		return nil, fmt.Errorf("failed to record winner: %w", err)
	}

	s.logger.Info("winner recorded",
		slog.Int("combat_id", combatID),
		slog.String("participant_id", string(participantID)),
	)
	s.announce(combatID, live.EventWinnerSet, winner)
	return winner, nil
}

// GetWinner returns the recorded winner of a combat, or nil when the combat
// is still open.
func (s *WinnerService) GetWinner(ctx context.Context, combatID int) (*models.CombatWinner, error) {
	if _, ok := s.reg.GetCombatByID(combatID); !ok {
		return nil, ErrCombatNotFound
	}

	winner, err := s.winners.GetByCombat(ctx, combatID)
	if err != nil {
		if errors.Is(err, repositories.ErrWinnerNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load winner: %w", err)
	}
	return winner, nil
}

func (s *WinnerService) ListWinners(ctx context.Context) ([]*models.CombatWinner, error) {
	return s.winners.ListAll(ctx)
}

// DeleteWinner reopens a combat. Deleting an absent winner succeeds.
func (s *WinnerService) DeleteWinner(ctx context.Context, combatID int) error {
	if _, ok := s.reg.GetCombatByID(combatID); !ok {
		return ErrCombatNotFound
	}

	if err := s.winners.DeleteByCombat(ctx, combatID); err != nil {
		return fmt.Errorf("failed to delete winner: %w", err)
	}

	s.logger.Info("winner cleared", slog.Int("combat_id", combatID))
	s.announce(combatID, live.EventWinnerCleared, nil)
	return nil
}

// ClearAllWinners reopens every combat. Idempotent.
func (s *WinnerService) ClearAllWinners(ctx context.Context) error {
	if err := s.winners.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to clear winners: %w", err)
	}

	s.logger.Info("all winners cleared")
	for _, combat := range s.reg.Combats() {
		s.announce(combat.ID, live.EventWinnerCleared, nil)
	}
	return nil
}

func (s *WinnerService) announce(combatID int, eventType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(live.RoomForCombat(combatID), live.Event{
		Type:    eventType,
		Payload: payload,
	})
}
