package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/recommendation/models"
	"anime-tracker-backend/internal/features/recommendation/repository"
	badgerdb "anime-tracker-backend/internal/platform/badger"
)

type recommendationRepository struct {
	db      *badger.DB
	retries int
}

// NewRecommendationRepository stores pending index entries as
// recommendations:pending:<to>:<createdAt ms, zero padded>:<id> so a reverse
// prefix scan yields newest first.
func NewRecommendationRepository(db *badger.DB, retries int) repository.RecommendationRepository {
	return &recommendationRepository{db: db, retries: retries}
}

func pendingPrefix(toUserID string) []byte {
	return []byte(repository.PendingKey(toUserID) + ":")
}

func pendingIndexKey(rec *models.Recommendation) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", pendingPrefix(rec.ToUserID), rec.CreatedAt.UnixMilli(), rec.ID))
}

func (r *recommendationRepository) Create(ctx context.Context, rec *models.Recommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal recommendation: %w", err)
	}

	return r.update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(repository.RecommendationKey(rec.ID)), data); err != nil {
			return fmt.Errorf("set recommendation: %w", err)
		}
		if rec.Status == models.StatusPending {
			return txn.Set(pendingIndexKey(rec), []byte(rec.ID))
		}
		return nil
	})
}

func (r *recommendationRepository) Get(ctx context.Context, id string) (*models.Recommendation, error) {
	var rec *models.Recommendation
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecommendation(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *recommendationRepository) ListPending(ctx context.Context, toUserID string, limit int) ([]*models.Recommendation, error) {
	result := make([]*models.Recommendation, 0, limit)

	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = pendingPrefix(toUserID)
		it := txn.NewIterator(opts)
		defer it.Close()

		// в обратном порядке поиск начинается с ключа, большего любого в префиксе
		seek := append(pendingPrefix(toUserID), 0xFF)
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix) && len(result) < limit; it.Next() {
			id, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}

			rec, err := getRecommendation(txn, string(id))
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if rec.Status == models.StatusPending {
				result = append(result, rec)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *recommendationRepository) Resolve(ctx context.Context, id, toUserID string, status models.Status, now time.Time) (*models.Recommendation, error) {
	var result *models.Recommendation

	err := r.update(func(txn *badger.Txn) error {
		rec, err := getRecommendation(txn, id)
		if err != nil {
			return err
		}
		if rec.ToUserID != toUserID {
			return repository.ErrNotFound
		}

		indexKey := pendingIndexKey(rec)
		if err := rec.Resolve(status, now); err != nil {
			result = rec
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal recommendation: %w", err)
		}
		if err := txn.Set([]byte(repository.RecommendationKey(id)), data); err != nil {
			return err
		}
		if err := txn.Delete(indexKey); err != nil {
			return err
		}

		result = rec
		return nil
	})
	if errors.Is(err, models.ErrAlreadyResolved) {
		return result, err
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *recommendationRepository) update(fn func(txn *badger.Txn) error) error {
	attempt := 0
	err := badgerdb.UpdateWithRetry(r.db, r.retries, func(txn *badger.Txn) error {
		if attempt > 0 {
			metrics.StoreConflicts.WithLabelValues("badger", "recommendation").Inc()
		}
		attempt++
		return fn(txn)
	})
	if errors.Is(err, badgerdb.ErrTooManyConflicts) {
		return repository.ErrTooManyConflicts
	}
	return err
}

func getRecommendation(txn *badger.Txn, id string) (*models.Recommendation, error) {
	item, err := txn.Get([]byte(repository.RecommendationKey(id)))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}

	var rec models.Recommendation
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal recommendation: %w", err)
	}
	return &rec, nil
}
