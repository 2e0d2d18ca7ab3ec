package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lavelada/velada-votes/models"
)

var ErrWinnerNotFound = errors.New("combat winner not found")

type WinnerRepository interface {
	// Upsert records the winner of a combat, replacing any previous record
	// for the same combat. Last admin action wins.
	Upsert(ctx context.Context, winner *models.CombatWinner) error
	GetByCombat(ctx context.Context, combatID int) (*models.CombatWinner, error)
	ListAll(ctx context.Context) ([]*models.CombatWinner, error)
	DeleteByCombat(ctx context.Context, combatID int) error
	DeleteAll(ctx context.Context) error
}

type postgresWinnerRepository struct {
	db SQLExecutor
}

func NewPostgresWinnerRepository(db SQLExecutor) WinnerRepository {
	return &postgresWinnerRepository{db: db}
}

func (r *postgresWinnerRepository) Upsert(ctx context.Context, winner *models.CombatWinner) error {
	query := `
		INSERT INTO combat_winners (combat_id, participant_id)
		VALUES ($1, $2)
		ON CONFLICT (combat_id) DO UPDATE
			SET participant_id = EXCLUDED.participant_id,
			    created_at = NOW()
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, winner.CombatID, winner.ParticipantID).Scan(&winner.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert winner for combat %d: %w", winner.CombatID, err)
	}
	return nil
}

func (r *postgresWinnerRepository) GetByCombat(ctx context.Context, combatID int) (*models.CombatWinner, error) {
	query := `
		SELECT combat_id, participant_id, created_at
		FROM combat_winners
		WHERE combat_id = $1`

	winner := &models.CombatWinner{}
	err := r.db.QueryRowContext(ctx, query, combatID).Scan(
		&winner.CombatID,
		&winner.ParticipantID,
		&winner.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWinnerNotFound
		}
		return nil, fmt.Errorf("failed to scan winner for combat %d: %w", combatID, err)
	}
	return winner, nil
}

func (r *postgresWinnerRepository) ListAll(ctx context.Context) ([]*models.CombatWinner, error) {
	query := `
		SELECT combat_id, participant_id, created_at
		FROM combat_winners
		ORDER BY combat_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query winners: %w", err)
	}
	defer rows.Close()

	winners := make([]*models.CombatWinner, 0)
	for rows.Next() {
		var winner models.CombatWinner
		if scanErr := rows.Scan(&winner.CombatID, &winner.ParticipantID, &winner.CreatedAt); scanErr != nil {
			return nil, fmt.Errorf("failed to scan winner row: %w", scanErr)
		}
		winners = append(winners, &winner)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during winner rows iteration: %w", err)
	}
	return winners, nil
}

// DeleteByCombat is idempotent: deleting an absent winner succeeds.
func (r *postgresWinnerRepository) DeleteByCombat(ctx context.Context, combatID int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM combat_winners WHERE combat_id = $1`, combatID); err != nil {
		return fmt.Errorf("failed to delete winner for combat %d: %w", combatID, err)
	}
	return nil
}

func (r *postgresWinnerRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM combat_winners`); err != nil {
		return fmt.Errorf("failed to delete winners: %w", err)
	}
	return nil
}
