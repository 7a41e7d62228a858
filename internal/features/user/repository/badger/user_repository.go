package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/user/models"
	"anime-tracker-backend/internal/features/user/repository"
	badgerdb "anime-tracker-backend/internal/platform/badger"
)

type userRepository struct {
	db      *badger.DB
	retries int
}

// NewUserRepository uses the same key layout as the Redis repository.
func NewUserRepository(db *badger.DB, retries int) repository.UserRepository {
	return &userRepository{db: db, retries: retries}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	userKey := []byte(repository.UserKey(user.TelegramID))
	profileKey := []byte(repository.ProfileKey(user.ProfileID))

	return r.update(func(txn *badger.Txn) error {
		if exists, err := keyExists(txn, userKey); err != nil {
			return err
		} else if exists {
			return repository.ErrUserExists
		}

		if exists, err := keyExists(txn, profileKey); err != nil {
			return err
		} else if exists {
			return repository.ErrProfileIDTaken
		}

		if err := txn.Set(userKey, data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		return txn.Set(profileKey, []byte(user.TelegramID))
	})
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, []byte(repository.UserKey(telegramID)))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByProfileID(ctx context.Context, profileID string) (*models.User, error) {
	var user *models.User
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(repository.ProfileKey(profileID)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return repository.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("get profile index: %w", err)
		}

		telegramID, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		user, err = getUser(txn, []byte(repository.UserKey(string(telegramID))))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, telegramID string, fn repository.UpdateFunc) (*models.User, error) {
	key := []byte(repository.UserKey(telegramID))

	var updated *models.User
	err := r.update(func(txn *badger.Txn) error {
		user, err := getUser(txn, key)
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
		if err := txn.Set(key, data); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return badgerdb.Ping(r.db)
}

func (r *userRepository) update(fn func(txn *badger.Txn) error) error {
	attempt := 0
	err := badgerdb.UpdateWithRetry(r.db, r.retries, func(txn *badger.Txn) error {
		if attempt > 0 {
			metrics.StoreConflicts.WithLabelValues("badger", "user").Inc()
		}
		attempt++
		return fn(txn)
	})
	if errors.Is(err, badgerdb.ErrTooManyConflicts) {
		return repository.ErrTooManyConflicts
	}
	return err
}

func keyExists(txn *badger.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func getUser(txn *badger.Txn, key []byte) (*models.User, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, repository.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user models.User
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	user.EnsureLists()

	return &user, nil
}
