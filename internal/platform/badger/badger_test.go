package badger

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *badger.DB {
	t.Helper()
	db, err := Open(context.Background(), Options{InMemory: true, ConnectAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpen_InMemory(t *testing.T) {
	db := openMemory(t)
	assert.NoError(t, Ping(db))
}

func TestOpen_Directory(t *testing.T) {
	db, err := Open(context.Background(), Options{Path: t.TempDir(), ConnectAttempts: 1})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	assert.Error(t, Ping(db))
}

func TestUpdateWithRetry_ReplaysConflicts(t *testing.T) {
	db := openMemory(t)
	key := []byte("counter")

	require.NoError(t, db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, []byte("0"))
	}))

	calls := 0
	err := UpdateWithRetry(db, 3, func(txn *badger.Txn) error {
		calls++
		if _, err := txn.Get(key); err != nil {
			return err
		}
		if calls == 1 {
			// a concurrent writer commits between our read and our commit
			require.NoError(t, db.Update(func(other *badger.Txn) error {
				return other.Set(key, []byte("1"))
			}))
		}
		return txn.Set(key, []byte("2"))
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestUpdateWithRetry_GivesUp(t *testing.T) {
	db := openMemory(t)
	key := []byte("hot")

	err := UpdateWithRetry(db, 2, func(txn *badger.Txn) error {
		_, _ = txn.Get(key)
		require.NoError(t, db.Update(func(other *badger.Txn) error {
			return other.Set(key, []byte("x"))
		}))
		return txn.Set(key, []byte("y"))
	})

	assert.ErrorIs(t, err, ErrTooManyConflicts)
}
