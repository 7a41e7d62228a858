package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/recommendation/models"
	"anime-tracker-backend/internal/features/recommendation/repository"
)

type recommendationRepository struct {
	client  *redis.Client
	retries int
}

// NewRecommendationRepository keeps each recommendation as a JSON document
// and indexes pending ones per recipient in a sorted set scored by creation
// time in milliseconds.
func NewRecommendationRepository(client *redis.Client, retries int) repository.RecommendationRepository {
	if retries < 1 {
		retries = 1
	}
	return &recommendationRepository{client: client, retries: retries}
}

func (r *recommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, repository.RecommendationKey(rec.ID), data, 0)
		if rec.Status == models.StatusPending {
			pipe.ZAdd(ctx, repository.PendingKey(rec.ToUserID), redis.Z{
				Score:  float64(rec.CreatedAt.UnixMilli()),
				Member: rec.ID,
			})
		}
		return nil
	})
	return err
}

func (r *recommendationRepository) Get(ctx context.Context, id string) (*models.Recommendation, error) {
	data, err := r.client.Get(ctx, repository.RecommendationKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (r *recommendationRepository) ListPending(ctx context.Context, toUserID string, limit int) ([]*models.Recommendation, error) {
	ids, err := r.client.ZRevRange(ctx, repository.PendingKey(toUserID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	result := make([]*models.Recommendation, 0, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = repository.RecommendationKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// индекс указывает на отсутствующий документ
			continue
		}
		rec, err := decode([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if rec.Status == models.StatusPending {
			result = append(result, rec)
		}
	}

	return result, nil
}

func (r *recommendationRepository) Resolve(ctx context.Context, id, toUserID string, status models.Status, now time.Time) (*models.Recommendation, error) {
	key := repository.RecommendationKey(id)

	var result *models.Recommendation
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return repository.ErrNotFound
		}
		if err != nil {
			return err
		}

		rec, err := decode(data)
		if err != nil {
			return err
		}
		if rec.ToUserID != toUserID {
			return repository.ErrNotFound
		}
		if err := rec.Resolve(status, now); err != nil {
			result = rec
			return err
		}

		updated, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal recommendation: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			pipe.ZRem(ctx, repository.PendingKey(rec.ToUserID), rec.ID)
			return nil
		})
		if err != nil {
			return err
		}

		result = rec
		return nil
	}

	for i := 0; i < r.retries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			metrics.StoreConflicts.WithLabelValues("redis", "recommendation").Inc()
			continue
		}
		if errors.Is(err, models.ErrAlreadyResolved) {
			return result, err
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	return nil, repository.ErrTooManyConflicts
}

func decode(data []byte) (*models.Recommendation, error) {
	var rec models.Recommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal recommendation: %w", err)
	}
	return &rec, nil
}
