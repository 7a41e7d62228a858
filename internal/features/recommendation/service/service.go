package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/common/logger"
	"anime-tracker-backend/internal/common/validation"
	"anime-tracker-backend/internal/features/recommendation/models"
	"anime-tracker-backend/internal/features/recommendation/repository"
	usermodels "anime-tracker-backend/internal/features/user/models"
)

// UserDirectory is the part of the user service recommendations rely on.
type UserDirectory interface {
	Get(ctx context.Context, telegramID string) (*usermodels.User, error)
	GetByProfileID(ctx context.Context, profileID string) (*usermodels.User, error)
	UpsertAnime(ctx context.Context, telegramID string, entry usermodels.AnimeEntry) (*usermodels.User, error)
	AppendReceived(ctx context.Context, telegramID string, rec usermodels.ReceivedRecommendation) (*usermodels.User, error)
}

// EventPublisher announces new recommendations to background consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event models.Event) error
}

type RecommendationService interface {
	// Send creates a pending recommendation from the caller to target, where
	// target is a telegram id or, failing that, a profile id.
	Send(ctx context.Context, fromTelegramID, target string, req models.SendRequest) (*models.Recommendation, error)
	ListPending(ctx context.Context, telegramID string) ([]*models.Recommendation, error)
	Resolve(ctx context.Context, telegramID, id string, status models.Status) (*models.Recommendation, error)
}

type recommendationService struct {
	repo      repository.RecommendationRepository
	users     UserDirectory
	publisher EventPublisher
	pageSize  int
	now       func() time.Time
}

func NewRecommendationService(repo repository.RecommendationRepository, users UserDirectory, publisher EventPublisher, pageSize int) RecommendationService {
	return &recommendationService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		pageSize:  pageSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *recommendationService) Send(ctx context.Context, fromTelegramID, target string, req models.SendRequest) (*models.Recommendation, error) {
	if err := validation.ValidateTitle(req.AnimeTitle); err != nil {
		return nil, apperrors.NewValidationError("animeTitle", err.Error())
	}
	if err := validation.ValidateComment(req.Comment); err != nil {
		return nil, apperrors.NewValidationError("comment", err.Error())
	}

	sender, err := s.users.Get(ctx, fromTelegramID)
	if err != nil {
		return nil, err
	}

	recipient, err := s.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if recipient.TelegramID == sender.TelegramID {
		return nil, apperrors.NewValidationError("userId", "cannot recommend to yourself")
	}

	rec := &models.Recommendation{
		ID:         uuid.NewString(),
		FromUserID: sender.TelegramID,
		ToUserID:   recipient.TelegramID,
		AnimeTitle: req.AnimeTitle,
		Comment:    req.Comment,
		Status:     models.StatusPending,
		CreatedAt:  s.now(),
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, apperrors.NewDatabaseError("create recommendation", err)
	}

	// Журнал у получателя вторичен: рекомендация уже сохранена
	if _, err := s.users.AppendReceived(ctx, recipient.TelegramID, usermodels.ReceivedRecommendation{
		AnimeTitle: rec.AnimeTitle,
		Comment:    rec.Comment,
		ReceivedAt: rec.CreatedAt,
	}); err != nil {
		logger.Error().Err(err).
			Str("recommendation_id", rec.ID).
			Str("to_user_id", rec.ToUserID).
			Msg("Failed to append recommendation to recipient log")
	}

	event := models.NewEvent(rec, sender.Username)
	event.FromHandle = req.SenderHandle
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).
			Str("recommendation_id", rec.ID).
			Msg("Failed to publish recommendation event")
	}

	logger.Info().
		Str("recommendation_id", rec.ID).
		Str("from_user_id", rec.FromUserID).
		Str("to_user_id", rec.ToUserID).
		Msg("Recommendation sent")

	return rec, nil
}

func (s *recommendationService) resolveTarget(ctx context.Context, target string) (*usermodels.User, error) {
	user, err := s.users.Get(ctx, target)
	if err == nil {
		return user, nil
	}
	if apperrors.CodeOf(err) != apperrors.ErrCodeUserNotFound {
		return nil, err
	}

	if validation.IsValidProfileID(target) {
		user, perr := s.users.GetByProfileID(ctx, target)
		if perr == nil {
			return user, nil
		}
		if apperrors.CodeOf(perr) != apperrors.ErrCodeProfileNotFound {
			return nil, perr
		}
	}

	return nil, apperrors.NewUserNotFoundError(target)
}

func (s *recommendationService) ListPending(ctx context.Context, telegramID string) ([]*models.Recommendation, error) {
	list, err := s.repo.ListPending(ctx, telegramID, s.pageSize)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list recommendations", err)
	}
	return list, nil
}

func (s *recommendationService) Resolve(ctx context.Context, telegramID, id string, status models.Status) (*models.Recommendation, error) {
	if status != models.StatusAccepted && status != models.StatusRejected {
		return nil, apperrors.NewValidationError("status", "must be one of accepted, rejected")
	}

	rec, err := s.repo.Resolve(ctx, id, telegramID, status, s.now())
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewRecommendationNotFoundError(id)
	case errors.Is(err, models.ErrAlreadyResolved):
		resolved := "resolved"
		if rec != nil {
			resolved = string(rec.Status)
		}
		return nil, apperrors.NewAlreadyResolvedError(id, resolved)
	case errors.Is(err, repository.ErrTooManyConflicts):
		return nil, apperrors.NewConflictError("recommendation", "too many concurrent updates")
	case err != nil:
		return nil, apperrors.NewDatabaseError("resolve recommendation", err)
	}

	if rec.Status == models.StatusAccepted {
		if _, err := s.users.UpsertAnime(ctx, telegramID, usermodels.AnimeEntry{
			Title:  rec.AnimeTitle,
			Status: usermodels.StatusPlanned,
		}); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("recommendation_id", rec.ID).
		Str("status", string(rec.Status)).
		Msg("Recommendation resolved")

	return rec, nil
}
