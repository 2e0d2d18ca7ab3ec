package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/repositories"
	"github.com/lavelada/velada-votes/utils"
)

const minPasswordLength = 8

// AuthService checks credentials and creates accounts. Token issuing lives
// at the HTTP layer.
type AuthService struct {
	users repositories.UserRepository
}

func NewAuthService(users repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, ErrNameRequired
	}
	if len(password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailConflict) {
			return nil, ErrEmailConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, creds models.Credentials) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
