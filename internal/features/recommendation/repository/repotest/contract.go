// Package repotest holds the behaviour shared by RecommendationRepository
// implementations.
package repotest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-tracker-backend/internal/features/recommendation/models"
	"anime-tracker-backend/internal/features/recommendation/repository"
)

var base = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func pending(id, from, to string, createdAt time.Time) *models.Recommendation {
	return &models.Recommendation{
		ID:         id,
		FromUserID: from,
		ToUserID:   to,
		AnimeTitle: "Title " + id,
		Status:     models.StatusPending,
		CreatedAt:  createdAt,
	}
}

// RunContract runs the shared test-suite against a fresh repository per subtest.
func RunContract(t *testing.T, newRepo func(t *testing.T) repository.RecommendationRepository) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		repo := newRepo(t)
		rec := pending("r1", "1", "2", base)
		rec.Comment = "watch it"
		require.NoError(t, repo.Create(ctx, rec))

		got, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, rec, got)

		_, err = repo.Get(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("list pending newest first and bounded", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 12; i++ {
			require.NoError(t, repo.Create(ctx, pending(fmt.Sprintf("r%02d", i), "1", "2", base.Add(time.Duration(i)*time.Minute))))
		}
		require.NoError(t, repo.Create(ctx, pending("other", "1", "3", base.Add(time.Hour))))

		list, err := repo.ListPending(ctx, "2", 10)
		require.NoError(t, err)
		require.Len(t, list, 10)
		assert.Equal(t, "r11", list[0].ID)
		assert.Equal(t, "r02", list[9].ID)
		for _, rec := range list {
			assert.Equal(t, "2", rec.ToUserID)
		}

		empty, err := repo.ListPending(ctx, "nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("resolve once", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "1", "2", base)))

		rec, err := repo.Resolve(ctx, "r1", "2", models.StatusAccepted, base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, rec.Status)

		list, err := repo.ListPending(ctx, "2", 10)
		require.NoError(t, err)
		assert.Empty(t, list)

		again, err := repo.Resolve(ctx, "r1", "2", models.StatusRejected, base.Add(2*time.Hour))
		assert.ErrorIs(t, err, models.ErrAlreadyResolved)
		require.NotNil(t, again)
		assert.Equal(t, models.StatusAccepted, again.Status)

		stored, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAccepted, stored.Status)
	})

	t.Run("resolve foreign or unknown", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "1", "2", base)))

		_, err := repo.Resolve(ctx, "r1", "3", models.StatusAccepted, base)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		_, err = repo.Resolve(ctx, "missing", "2", models.StatusAccepted, base)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		stored, err := repo.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, stored.Status)
	})

	t.Run("concurrent resolve has one winner", func(t *testing.T) {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, pending("r1", "1", "2", base)))

		const n = 6
		var wg sync.WaitGroup
		results := make(chan error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Resolve(ctx, "r1", "2", models.StatusRejected, base)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		wins, conflicts := 0, 0
		for err := range results {
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, models.ErrAlreadyResolved):
				conflicts++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, n-1, conflicts)
	})
}
