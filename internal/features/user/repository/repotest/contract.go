// Package repotest holds the behaviour every UserRepository implementation
// must share. Backend test files call RunContract with their constructor.
package repotest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-tracker-backend/internal/features/user/models"
	"anime-tracker-backend/internal/features/user/repository"
)

// RunContract runs the shared test-suite against a fresh repository per subtest.
func RunContract(t *testing.T, newRepo func(t *testing.T) repository.UserRepository) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, models.NewUser("1", "aaaaaaaa", "A", now)))

		byID, err := repo.GetByTelegramID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "A", byID.Username)
		assert.NotNil(t, byID.AnimeList)

		byProfile, err := repo.GetByProfileID(ctx, "aaaaaaaa")
		require.NoError(t, err)
		assert.Equal(t, byID, byProfile)
	})

	t.Run("not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.GetByTelegramID(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)

		_, err = repo.GetByProfileID(ctx, "deadbeef")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)

		_, err = repo.Update(ctx, "missing", func(*models.User) error { return nil })
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("profile index is not a user key", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, models.NewUser("1", "aaaaaaaa", "A", now)))

		_, err := repo.GetByTelegramID(ctx, "profile:aaaaaaaa")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)

		_, err = repo.Update(ctx, "profile:aaaaaaaa", func(*models.User) error { return nil })
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("unique keys", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, models.NewUser("1", "aaaaaaaa", "A", now)))

		err := repo.Create(ctx, models.NewUser("1", "bbbbbbbb", "B", now))
		assert.ErrorIs(t, err, repository.ErrUserExists)

		err = repo.Create(ctx, models.NewUser("2", "aaaaaaaa", "B", now))
		assert.ErrorIs(t, err, repository.ErrProfileIDTaken)

		_, err = repo.GetByTelegramID(ctx, "2")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("update applies fn", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, models.NewUser("1", "aaaaaaaa", "A", now)))

		updated, err := repo.Update(ctx, "1", func(u *models.User) error {
			u.UpsertAnime(models.AnimeEntry{Title: "Bleach", Status: models.StatusCompleted}, now)
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 1, updated.WatchedCount)

		stored, err := repo.GetByTelegramID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("update fn error aborts write", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, models.NewUser("1", "aaaaaaaa", "A", now)))
		boom := errors.New("rejected")

		_, err := repo.Update(ctx, "1", func(u *models.User) error {
			u.Username = "changed"
			return boom
		})
		assert.ErrorIs(t, err, boom)

		stored, err := repo.GetByTelegramID(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "A", stored.Username)
	})

	t.Run("concurrent upserts are not lost", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, models.NewUser("1", "aaaaaaaa", "A", now)))

		titles := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
		var wg sync.WaitGroup
		errs := make(chan error, len(titles))
		for _, title := range titles {
			wg.Add(1)
			go func(title string) {
				defer wg.Done()
				_, err := repo.Update(ctx, "1", func(u *models.User) error {
					u.UpsertAnime(models.AnimeEntry{Title: title}, now)
					return nil
				})
				errs <- err
			}(title)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		stored, err := repo.GetByTelegramID(ctx, "1")
		require.NoError(t, err)
		assert.Len(t, stored.AnimeList, len(titles))
		assert.Equal(t, len(titles), stored.PlannedCount)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
