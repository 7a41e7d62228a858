package service

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	apperrors "anime-tracker-backend/internal/common/errors"
	"anime-tracker-backend/internal/common/logger"
	"anime-tracker-backend/internal/common/validation"
	"anime-tracker-backend/internal/features/user/models"
	"anime-tracker-backend/internal/features/user/repository"
)

// profileIDAttempts bounds regeneration after a profile id collision.
const profileIDAttempts = 5

type UserService interface {
	GetOrCreate(ctx context.Context, telegramID, username string) (*models.User, error)
	Get(ctx context.Context, telegramID string) (*models.User, error)
	GetByProfileID(ctx context.Context, profileID string) (*models.User, error)
	UpsertAnime(ctx context.Context, telegramID string, entry models.AnimeEntry) (*models.User, error)
	UploadAvatar(ctx context.Context, telegramID string, file *multipart.FileHeader) (*models.User, error)
	AppendReceived(ctx context.Context, telegramID string, rec models.ReceivedRecommendation) (*models.User, error)
	Ping(ctx context.Context) error
}

// AvatarStore persists an uploaded image and returns its public URL.
type AvatarStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

type Option func(*userService)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *userService) { s.now = now }
}

// WithProfileIDGenerator overrides the random 8-character generator.
func WithProfileIDGenerator(gen func() string) Option {
	return func(s *userService) { s.newProfileID = gen }
}

type userService struct {
	repo    repository.UserRepository
	avatars AvatarStore

	now          func() time.Time
	newProfileID func() string
}

func NewUserService(repo repository.UserRepository, avatars AvatarStore, opts ...Option) UserService {
	s := &userService{
		repo:         repo,
		avatars:      avatars,
		now:          func() time.Time { return time.Now().UTC() },
		newProfileID: randomProfileID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomProfileID() string {
	// первая группа UUID v4: 8 hex-символов
	return uuid.NewString()[:validation.ProfileIDLength]
}

func (s *userService) GetOrCreate(ctx context.Context, telegramID, username string) (*models.User, error) {
	if err := validation.ValidateTelegramID(telegramID); err != nil {
		return nil, apperrors.NewValidationError("telegramId", err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, apperrors.NewValidationError("username", err.Error())
	}

	// Две попытки: второй заход нужен, если пользователя создали параллельно
	for round := 0; round < 2; round++ {
		user, err := s.repo.Update(ctx, telegramID, func(u *models.User) error {
			u.Username = username
			u.UpdatedAt = s.now()
			return nil
		})
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, s.mapError("update user", telegramID, err)
		}

		user, err = s.create(ctx, telegramID, username)
		if errors.Is(err, repository.ErrUserExists) {
			continue
		}
		return user, err
	}

	return nil, apperrors.NewConflictError("user", "concurrent creation did not settle")
}

func (s *userService) create(ctx context.Context, telegramID, username string) (*models.User, error) {
	for attempt := 1; attempt <= profileIDAttempts; attempt++ {
		user := models.NewUser(telegramID, s.newProfileID(), username, s.now())

		err := s.repo.Create(ctx, user)
		switch {
		case err == nil:
			logger.Info().
				Str("telegram_id", telegramID).
				Str("profile_id", user.ProfileID).
				Msg("User created")
			return user, nil
		case errors.Is(err, repository.ErrUserExists):
			return nil, err
		case errors.Is(err, repository.ErrProfileIDTaken):
			logger.Warn().
				Str("profile_id", user.ProfileID).
				Int("attempt", attempt).
				Msg("Profile id collision, regenerating")
		default:
			return nil, s.mapError("create user", telegramID, err)
		}
	}

	return nil, apperrors.NewConflictError("user", "could not allocate a unique profile id")
}

func (s *userService) Get(ctx context.Context, telegramID string) (*models.User, error) {
	if err := checkTelegramID(telegramID); err != nil {
		return nil, err
	}

	user, err := s.repo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, s.mapError("get user", telegramID, err)
	}
	return user, nil
}

func (s *userService) GetByProfileID(ctx context.Context, profileID string) (*models.User, error) {
	user, err := s.repo.GetByProfileID(ctx, profileID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperrors.NewProfileNotFoundError(profileID)
		}
		return nil, s.mapError("get user by profile", profileID, err)
	}
	return user, nil
}

func (s *userService) UpsertAnime(ctx context.Context, telegramID string, entry models.AnimeEntry) (*models.User, error) {
	if err := checkTelegramID(telegramID); err != nil {
		return nil, err
	}
	if err := validation.ValidateTitle(entry.Title); err != nil {
		return nil, apperrors.NewValidationError("title", err.Error())
	}
	if entry.Status == "" {
		entry.Status = models.StatusPlanned
	}
	if !entry.Status.Valid() {
		return nil, apperrors.NewValidationError("status", "must be one of planned, watching, completed").
			WithDetail("value", string(entry.Status))
	}

	user, err := s.repo.Update(ctx, telegramID, func(u *models.User) error {
		u.UpsertAnime(entry, s.now())
		return nil
	})
	if err != nil {
		return nil, s.mapError("upsert anime", telegramID, err)
	}

	logger.Debug().
		Str("telegram_id", telegramID).
		Str("title", entry.Title).
		Str("status", string(entry.Status)).
		Int("watched", user.WatchedCount).
		Int("planned", user.PlannedCount).
		Msg("Anime list updated")

	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, telegramID string, file *multipart.FileHeader) (*models.User, error) {
	if err := checkTelegramID(telegramID); err != nil {
		return nil, err
	}
	if file == nil {
		return nil, apperrors.NewBadRequestError("No file uploaded")
	}

	// Проверяем пользователя до записи файла на диск
	if _, err := s.Get(ctx, telegramID); err != nil {
		return nil, err
	}

	url, err := s.avatars.Save(file)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "Failed to store avatar")
	}

	// Предыдущий файл остаётся на диске
	user, err := s.repo.Update(ctx, telegramID, func(u *models.User) error {
		u.SetAvatar(url, s.now())
		return nil
	})
	if err != nil {
		return nil, s.mapError("set avatar", telegramID, err)
	}

	return user, nil
}

func (s *userService) AppendReceived(ctx context.Context, telegramID string, rec models.ReceivedRecommendation) (*models.User, error) {
	if err := checkTelegramID(telegramID); err != nil {
		return nil, err
	}
	now := s.now()
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = now
	}

	user, err := s.repo.Update(ctx, telegramID, func(u *models.User) error {
		u.AppendReceived(rec, now)
		return nil
	})
	if err != nil {
		return nil, s.mapError("append recommendation", telegramID, err)
	}
	return user, nil
}

func (s *userService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// checkTelegramID rejects path ids that cannot belong to any user.
func checkTelegramID(telegramID string) error {
	if err := validation.ValidateTelegramID(telegramID); err != nil {
		return apperrors.NewUserNotFoundError(telegramID).WithDetail("reason", err.Error())
	}
	return nil
}

func (s *userService) mapError(op, id string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return apperrors.NewUserNotFoundError(id)
	case errors.Is(err, repository.ErrTooManyConflicts):
		return apperrors.NewConflictError("user", "too many concurrent updates").WithDetail("operation", op)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return apperrors.NewDatabaseError(op, err)
}
