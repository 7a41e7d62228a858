package repository

import (
	"context"
	"errors"
	"time"

	"anime-tracker-backend/internal/features/recommendation/models"
)

var (
	ErrNotFound         = errors.New("recommendation not found")
	ErrTooManyConflicts = errors.New("recommendation update conflicted too many times")
)

type RecommendationRepository interface {
	Create(ctx context.Context, rec *models.Recommendation) error
	Get(ctx context.Context, id string) (*models.Recommendation, error)
	// ListPending returns up to limit pending recommendations for toUserID,
	// newest first.
	ListPending(ctx context.Context, toUserID string, limit int) ([]*models.Recommendation, error)
	// Resolve atomically moves a pending recommendation addressed to toUserID
	// to status. Unknown ids and foreign recipients yield ErrNotFound; an
	// already resolved one yields models.ErrAlreadyResolved together with its
	// current state.
	Resolve(ctx context.Context, id, toUserID string, status models.Status, now time.Time) (*models.Recommendation, error)
}

func RecommendationKey(id string) string {
	return "recommendation:" + id
}

func PendingKey(toUserID string) string {
	return "recommendations:pending:" + toUserID
}
