package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/user/models"
	"anime-tracker-backend/internal/features/user/repository"
)

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type userRepository struct {
	client  *redis.Client
	retries int
}

// NewUserRepository stores users as JSON documents under user:<telegramId>
// with a profile:<profileId> index key.
func NewUserRepository(client *redis.Client, retries int) repository.UserRepository {
	if retries < 1 {
		retries = 1
	}
	return &userRepository{
		client:  client,
		retries: retries,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	userKey := repository.UserKey(user.TelegramID)
	profileKey := repository.ProfileKey(user.ProfileID)

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, userKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrUserExists
		}

		n, err = tx.Exists(ctx, profileKey).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return repository.ErrProfileIDTaken
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey, data, 0)
			pipe.Set(ctx, profileKey, user.TelegramID, 0)
			return nil
		})
		return err
	}

	return r.watch(ctx, txf, userKey, profileKey)
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	return r.get(ctx, r.client, repository.UserKey(telegramID))
}

func (r *userRepository) GetByProfileID(ctx context.Context, profileID string) (*models.User, error) {
	telegramID, err := r.client.Get(ctx, repository.ProfileKey(profileID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}

	return r.GetByTelegramID(ctx, telegramID)
}

func (r *userRepository) Update(ctx context.Context, telegramID string, fn repository.UpdateFunc) (*models.User, error) {
	key := repository.UserKey(telegramID)

	var updated *models.User
	txf := func(tx *redis.Tx) error {
		user, err := r.get(ctx, tx, key)
		if err != nil {
			return err
		}

		if err := fn(user); err != nil {
			return err
		}

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return err
		}

		updated = user
		return nil
	}

	if err := r.watch(ctx, txf, key); err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// watch runs txf under WATCH and replays it while EXEC reports that a
// watched key changed.
func (r *userRepository) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < r.retries; i++ {
		err := r.client.Watch(ctx, txf, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		metrics.StoreConflicts.WithLabelValues("redis", "user").Inc()
	}

	return repository.ErrTooManyConflicts
}

func (r *userRepository) get(ctx context.Context, c getter, key string) (*models.User, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user %s: %w", key, err)
	}
	user.EnsureLists()

	return &user, nil
}
