package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lavelada/velada-votes/handlers"
	"github.com/lavelada/velada-votes/middleware"
	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/registry"
	"github.com/lavelada/velada-votes/repositories"
	"github.com/lavelada/velada-votes/routes"
	"github.com/lavelada/velada-votes/services"
)

const testJWTSecret = "test-secret"

// envelope mirrors the JSON response shape for assertions.
type envelope struct {
	Success bool                       `json:"success"`
	Data    map[string]json.RawMessage `json:"data"`
	Error   string                     `json:"error"`
	Message string                     `json:"message"`
}

type fakeVoteRepo struct {
	mu    sync.Mutex
	votes map[string]*models.Vote
	seq   int
}

func newFakeVoteRepo() *fakeVoteRepo {
	return &fakeVoteRepo{votes: make(map[string]*models.Vote)}
}

func (f *fakeVoteRepo) key(userID string, combatID int) string {
	return fmt.Sprintf("%s|%d", userID, combatID)
}

func (f *fakeVoteRepo) Create(ctx context.Context, vote *models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.key(vote.UserID, vote.CombatID)
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
	vote, ok := f.votes[f.key(userID, combatID)]
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

type fakeUserRepo struct {
	mu    sync.Mutex
	users []*models.User
	seq   int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	f.seq++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", f.seq)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	f.users = append(f.users, &stored)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if offset >= len(f.users) {
		return []*models.User{}, nil
	}
	end := offset + limit
	if end > len(f.users) {
		end = len(f.users)
	}
	page := make([]*models.User, 0, end-offset)
	for _, user := range f.users[offset:end] {
		copied := *user
		page = append(page, &copied)
	}
	return page, nil
}

func (f *fakeUserRepo) Count(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users), nil
}

func (f *fakeUserRepo) UpdateImage(ctx context.Context, id string, imageURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.ID == id {
			user.Image = &imageURL
			user.UpdatedAt = time.Now()
			return nil
		}
	}
	return repositories.ErrUserNotFound
}

// testEnv wires the full router over in-memory repositories.
type testEnv struct {
	router        *chi.Mux
	authenticator *middleware.Authenticator
	voteRepo      *fakeVoteRepo
	winnerRepo    *fakeWinnerRepo
	userRepo      *fakeUserRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := registry.LaVelada2025()

	voteRepo := newFakeVoteRepo()
	winnerRepo := newFakeWinnerRepo()
	userRepo := newFakeUserRepo()

	votingService := services.NewVotingService(reg, voteRepo, logger)
	winnerService := services.NewWinnerService(reg, winnerRepo, nil, logger)
	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo, nil, logger)

	authenticator := middleware.NewAuthenticator(testJWTSecret)

	router := chi.NewRouter()
	routes.SetupRoutes(
		router,
		authenticator,
		handlers.NewAuthHandler(authService, authenticator),
		handlers.NewVoteHandler(votingService),
		handlers.NewWinnerHandler(winnerService),
		handlers.NewUserHandler(userService),
		handlers.NewCombatHandler(reg),
		handlers.NewWebSocketHandler(nil, reg),
	)

	return &testEnv{
		router:        router,
		authenticator: authenticator,
		voteRepo:      voteRepo,
		winnerRepo:    winnerRepo,
		userRepo:      userRepo,
	}
}

func (env *testEnv) createUser(t *testing.T, name string, isAdmin bool) *models.User {
	t.Helper()
	user := &models.User{
		Email:        name + "@example.com",
		Name:         name,
		PasswordHash: "x",
		IsAdmin:      isAdmin,
	}
	if err := env.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := env.authenticator.GenerateToken(user)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func (env *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response envelope: %v (body: %s)", err, w.Body.String())
	}
	return env
}
