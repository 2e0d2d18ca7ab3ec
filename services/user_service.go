package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/lavelada/velada-votes/models"
	"github.com/lavelada/velada-votes/repositories"
	"github.com/lavelada/velada-votes/storage"
)

var allowedImageTypes = map[string]string{
	"image/webp": "webp",
	"image/png":  "png",
	"image/jpeg": "jpg",
}

// UserService serves the public user read API and avatar uploads.
type UserService struct {
	users    repositories.UserRepository
	uploader storage.FileUploader // optional; nil disables avatar uploads
	logger   *slog.Logger
}

func NewUserService(users repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) *UserService {
	return &UserService{
		users:    users,
		uploader: uploader,
		logger:   logger,
	}
}

// ListUsers returns one sanitized page of users plus the total count.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]models.PublicUser, int, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, user := range users {
		public = append(public, user.Public())
	}
	return public, total, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	public := user.Public()
	return &public, nil
}

// UploadAvatar stores a profile image and points the user's image field at
// its public URL. Only the user themselves or an admin may call this; the
// caller passes that decision in as canModify.
func (s *UserService) UploadAvatar(ctx context.Context, userID string, canModify bool, contentType string, body io.Reader) (string, error) {
	if !canModify {
		return "", ErrForbiddenOperation
	}
	if s.uploader == nil {
		return "", ErrUploaderUnavailable
	}

	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", ErrUnsupportedImage
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	key := fmt.Sprintf("avatars/%s.%s", userID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, body)
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.users.UpdateImage(ctx, userID, result.Location); err != nil {
		return "", fmt.Errorf("failed to store avatar URL: %w", err)
	}

	s.logger.Info("avatar uploaded", slog.String("user_id", userID), slog.String("key", result.Key))
	return result.Location, nil
}
