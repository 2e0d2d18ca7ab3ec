package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/repositories"
)

// fakeVoteRepo is an in-memory VoteRepository. Create enforces the same
// (user, combat) uniqueness the database does, atomically under a mutex, so
// the concurrent-cast tests exercise the real race.
type fakeVoteRepo struct {
	mu    sync.Mutex
	votes map[string]*models.Vote
	seq   int
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[string]*models.Vote)}
}

func voteKey(userID string, combatID int) string {
	return fmt.Sprintf("%s|%d", userID, combatID)
}

func (f *fakeVoteRepo) Create(ctx context.Context, vote *models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := voteKey(vote.UserID, vote.CombatID)
	if _, exists := f.votes[key]; exists {
		return repositories.ErrVoteConflict
	}

	f.seq++
	if vote.ID == "" {
		vote.ID = fmt.Sprintf("vote-%d", f.seq)
	}
	vote.CreatedAt = time.Now()

	stored := *vote
	f.votes[key] = &stored
	return nil
}

func (f *fakeVoteRepo) FindByUserAndCombat(ctx context.Context, userID string, combatID int) (*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	vote, ok := f.votes[voteKey(userID, combatID)]
	if !ok {
		return nil, repositories.ErrVoteNotFound
	}
	copied := *vote
	return &copied, nil
}

func (f *fakeVoteRepo) ListByCombat(ctx context.Context, combatID int) ([]*models.Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	votes := make([]*models.Vote, 0)
	for _, vote := range f.votes {
		if vote.CombatID == combatID {
			copied := *vote
			votes = append(votes, &copied)
		}
	}
	sort.Slice(votes, func(i, j int) bool { return votes[i].ID < votes[j].ID })
	return votes, nil
}

func (f *fakeVoteRepo) CountByParticipant(ctx context.Context) (map[registry.Participant]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[registry.Participant]int)
	for _, vote := range f.votes {
		counts[vote.ParticipantID]++
	}
	return counts, nil
}

func (f *fakeVoteRepo) CountByParticipantAndCombat(ctx context.Context, participantID registry.Participant, combatID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, vote := range f.votes {
		if vote.ParticipantID == participantID && vote.CombatID == combatID {
			count++
		}
	}
	return count, nil
}

func (f *fakeVoteRepo) CountAll(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.votes), nil
}

func (f *fakeVoteRepo) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.votes = make(map[string]*models.Vote)
	return nil
}

// fakeWinnerRepo is an in-memory WinnerRepository keyed by combat ID, so it
// can never hold two winners for one combat.
type fakeWinnerRepo struct {
	mu      sync.Mutex
	winners map[int]*models.CombatWinner
}

func newFakeWinnerRepo() *fakeWinnerRepo {
	return &fakeWinnerRepo{winners: make(map[int]*models.CombatWinner)}
}

func (f *fakeWinnerRepo) Upsert(ctx context.Context, winner *models.CombatWinner) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	winner.CreatedAt = time.Now()
	stored := *winner
	f.winners[winner.CombatID] = &stored
	return nil
}

func (f *fakeWinnerRepo) GetByCombat(ctx context.Context, combatID int) (*models.CombatWinner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	winner, ok := f.winners[combatID]
	if !ok {
		return nil, repositories.ErrWinnerNotFound
	}
	copied := *winner
	return &copied, nil
}

func (f *fakeWinnerRepo) ListAll(ctx context.Context) ([]*models.CombatWinner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	winners := make([]*models.CombatWinner, 0, len(f.winners))
	for _, winner := range f.winners {
		copied := *winner
		winners = append(winners, &copied)
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].CombatID < winners[j].CombatID })
	return winners, nil
}

func (f *fakeWinnerRepo) DeleteByCombat(ctx context.Context, combatID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.winners, combatID)
	return nil
}

func (f *fakeWinnerRepo) DeleteAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.winners = make(map[int]*models.CombatWinner)
	return nil
}

func (f *fakeWinnerRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.winners)
}
