package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lib/pq"
)

var (
	ErrVoteNotFound = errors.New("vote not found")

	// ErrVoteConflict means a vote already exists for the (user, combat)
	// pair. The unique index is the authoritative guard: two concurrent
	// inserts for the same pair both pass the application-level existence
	// check, and the second one lands here.
	ErrVoteConflict = errors.New("vote already exists for this user and combat")
)

type VoteRepository interface {
	Create(ctx context.Context, vote *models.Vote) error
	FindByUserAndCombat(ctx context.Context, userID string, combatID int) (*models.Vote, error)
	ListByCombat(ctx context.Context, combatID int) ([]*models.Vote, error)
	CountByParticipant(ctx context.Context) (map[registry.Participant]int, error)
	CountByParticipantAndCombat(ctx context.Context, participantID registry.Participant, combatID int) (int, error)
	CountAll(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type postgresVoteRepository struct {
	db SQLExecutor
}

func NewPostgresVoteRepository(db SQLExecutor) VoteRepository {
	return &postgresVoteRepository{db: db}
}

func (r *postgresVoteRepository) Create(ctx context.Context, vote *models.Vote) error {
	if vote.ID == "" {
		vote.ID = uuid.NewString()
	}

	query := `
		INSERT INTO votes (id, user_id, participant_id, combat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		vote.ID,
		vote.UserID,
		vote.ParticipantID,
		vote.CombatID,
	).Scan(&vote.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// votes_user_id_combat_id_key
			return ErrVoteConflict
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (r *postgresVoteRepository) FindByUserAndCombat(ctx context.Context, userID string, combatID int) (*models.Vote, error) {
	query := `
		SELECT id, user_id, participant_id, combat_id, created_at
		FROM votes
		WHERE user_id = $1 AND combat_id = $2`

	vote := &models.Vote{}
	err := r.db.QueryRowContext(ctx, query, userID, combatID).Scan(
		&vote.ID,
		&vote.UserID,
		&vote.ParticipantID,
		&vote.CombatID,
		&vote.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to scan vote for user %s combat %d: %w", userID, combatID, err)
	}
	return vote, nil
}

func (r *postgresVoteRepository) ListByCombat(ctx context.Context, combatID int) ([]*models.Vote, error) {
	query := `
		SELECT id, user_id, participant_id, combat_id, created_at
		FROM votes
		WHERE combat_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, combatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes for combat %d: %w", combatID, err)
	}
	defer rows.Close()

	votes := make([]*models.Vote, 0)
	for rows.Next() {
		var vote models.Vote
		if scanErr := rows.Scan(
			&vote.ID,
			&vote.UserID,
			&vote.ParticipantID,
			&vote.CombatID,
			&vote.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan vote row: %w", scanErr)
		}
		votes = append(votes, &vote)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during vote rows iteration: %w", err)
	}
	return votes, nil
}

func (r *postgresVoteRepository) CountByParticipant(ctx context.Context) (map[registry.Participant]int, error) {
	query := `
		SELECT participant_id, COUNT(*)
		FROM votes
		GROUP BY participant_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query vote counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[registry.Participant]int)
	for rows.Next() {
		var participantID registry.Participant
		var count int
		if scanErr := rows.Scan(&participantID, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan vote count row: %w", scanErr)
		}
		counts[participantID] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during vote count rows iteration: %w", err)
	}
	return counts, nil
}

func (r *postgresVoteRepository) CountByParticipantAndCombat(ctx context.Context, participantID registry.Participant, combatID int) (int, error) {
	query := `SELECT COUNT(*) FROM votes WHERE participant_id = $1 AND combat_id = $2`

	var count int
	if err := r.db.QueryRowContext(ctx, query, participantID, combatID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes for participant %s combat %d: %w", participantID, combatID, err)
	}
	return count, nil
}

func (r *postgresVoteRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return count, nil
}

// DeleteAll is idempotent: clearing an empty table is not an error.
func (r *postgresVoteRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM votes`); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	return nil
}
