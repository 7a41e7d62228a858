// Package badger opens the embedded key-value store used when the service
// runs without Redis.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"anime-tracker-backend/internal/common/logger"
	"anime-tracker-backend/internal/platform/retry"
)

// ErrTooManyConflicts is returned by UpdateWithRetry when every attempt lost
// an optimistic conflict.
var ErrTooManyConflicts = errors.New("badger: too many transaction conflicts")

type Options struct {
	Path     string
	InMemory bool

	ConnectAttempts int
	ConnectDelay    time.Duration
}

// Open opens the database, retrying while the directory is locked by another
// process.
func Open(ctx context.Context, opts Options) (*badger.DB, error) {
	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(zerologAdapter{log: logger.With("badger")}).
		WithLoggingLevel(badger.WARNING)
	if opts.InMemory {
		bopts = bopts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	var db *badger.DB
	policy := retry.Policy{Attempts: opts.ConnectAttempts, Delay: opts.ConnectDelay}
	err := policy.Do(ctx, "badger", func(context.Context) error {
		var err error
		db, err = badger.Open(bopts)
		return err
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

// UpdateWithRetry runs fn in a read-write transaction and replays it when the
// commit loses to a concurrent writer.
func UpdateWithRetry(db *badger.DB, retries int, fn func(txn *badger.Txn) error) error {
	if retries < 1 {
		retries = 1
	}

	for i := 0; i < retries; i++ {
		err := db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}

	return fmt.Errorf("%w after %d attempts", ErrTooManyConflicts, retries)
}

// Ping checks that the database is still open.
func Ping(db *badger.DB) error {
	if db == nil || db.IsClosed() {
		return errors.New("badger: database is closed")
	}
	return db.View(func(*badger.Txn) error { return nil })
}

type zerologAdapter struct {
	log zerolog.Logger
}

func (a zerologAdapter) Errorf(f string, v ...interface{})   { a.log.Error().Msgf(f, v...) }
func (a zerologAdapter) Warningf(f string, v ...interface{}) { a.log.Warn().Msgf(f, v...) }
func (a zerologAdapter) Infof(f string, v ...interface{})    { a.log.Info().Msgf(f, v...) }
func (a zerologAdapter) Debugf(f string, v ...interface{})   { a.log.Debug().Msgf(f, v...) }
