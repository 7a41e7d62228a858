package repository

import (
	"context"
	"errors"

	"anime-tracker-backend/internal/features/user/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrProfileIDTaken   = errors.New("profile id already taken")
	ErrTooManyConflicts = errors.New("user update conflicted too many times")
)

// UpdateFunc mutates the current document inside an optimistic transaction.
// Returning an error aborts the write and is passed through to the caller.
type UpdateFunc func(user *models.User) error

type UserRepository interface {
	// Create stores a new user together with its profile id index entry.
	// It fails with ErrUserExists or ErrProfileIDTaken without writing.
	Create(ctx context.Context, user *models.User) error
	GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error)
	GetByProfileID(ctx context.Context, profileID string) (*models.User, error)
	// Update loads the user, applies fn and writes the result back only if
	// nobody changed the document in between; lost races are replayed.
	Update(ctx context.Context, telegramID string, fn UpdateFunc) (*models.User, error)
	Ping(ctx context.Context) error
}

func UserKey(telegramID string) string {
	return "user:" + telegramID
}

// ProfileKey lives outside the user: namespace so no telegram id can name it.
func ProfileKey(profileID string) string {
	return "profile:" + profileID
}
