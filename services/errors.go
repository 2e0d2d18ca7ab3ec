package services

import "errors"

// Sentinel errors shared by the services and the HTTP error mapping.
var (
	// Vote casting
	ErrInvalidParticipant     = errors.New("invalid participant")
	ErrCombatNotFound         = errors.New("combat not found")
	ErrParticipantNotInCombat = errors.New("participant is not in the specified combat")
	ErrAlreadyVoted           = errors.New("user has already voted in this combat")

	// Destructive admin operations
	ErrNotConfirmed = errors.New("operation requires confirmation")

	// Users and authentication
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailConflict      = errors.New("email address is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordTooShort   = errors.New("password is too short")
	ErrNameRequired       = errors.New("name is required")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// File storage
	ErrUploaderUnavailable = errors.New("file storage is not configured")
	ErrUnsupportedImage    = errors.New("unsupported image content type")
)
