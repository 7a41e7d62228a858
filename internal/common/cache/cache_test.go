package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	badgerdb "anime-tracker-backend/internal/platform/badger"
)

type item struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func stores(t *testing.T) map[string]Store {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db, err := badgerdb.Open(context.Background(), badgerdb.Options{InMemory: true, ConnectAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return map[string]Store{
		"redis":  NewRedisStore(client, "cache:"),
		"badger": NewBadgerStore(db, "cache:"),
	}
}

func TestCacheService_GetOrSet(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c := NewCacheService(store)
			ctx := context.Background()
			calls := 0
			setter := func() (interface{}, error) {
				calls++
				return item{ID: 20, Title: "Naruto"}, nil
			}

			var first item
			hit, err := c.GetOrSet(ctx, "anime:20", &first, time.Hour, setter)
			require.NoError(t, err)
			assert.False(t, hit)
			assert.Equal(t, "Naruto", first.Title)

			var second item
			hit, err = c.GetOrSet(ctx, "anime:20", &second, time.Hour, setter)
			require.NoError(t, err)
			assert.True(t, hit)
			assert.Equal(t, first, second)
			assert.Equal(t, 1, calls)

			require.NoError(t, c.Delete(ctx, "anime:20"))
			var dst item
			assert.ErrorIs(t, c.Get(ctx, "anime:20", &dst), ErrMiss)
		})
	}
}

func TestCacheService_SetterErrorIsNotCached(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			c := NewCacheService(store)
			boom := errors.New("upstream down")

			var dst item
			_, err := c.GetOrSet(context.Background(), "k", &dst, time.Hour, func() (interface{}, error) {
				return nil, boom
			})
			assert.ErrorIs(t, err, boom)

			assert.ErrorIs(t, c.Get(context.Background(), "k", &dst), ErrMiss)
		})
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	s := NewRedisStore(client, "cache:")
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.True(t, mr.Exists("cache:k"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(context.Background(), "k")
	assert.ErrorIs(t, err, ErrMiss)
}
