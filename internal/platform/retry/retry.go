// Package retry wraps the fixed-delay, fixed-attempt policy used to bring up
// store connections at startup.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"anime-tracker-backend/internal/common/logger"
)

// Policy is a bounded constant backoff: Attempts tries separated by Delay.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Do runs op until it succeeds, the attempts are exhausted or ctx is done.
// The last error is returned wrapped with the component name so the caller
// can fail loudly.
func (p Policy) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var b backoff.BackOff = backoff.NewConstantBackOff(p.Delay)
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		return op(ctx)
	}, b, func(err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Str("component", name).
			Int("attempt", attempt).
			Int("retries_left", attempts-attempt).
			Dur("next_in", next).
			Msg("Connection attempt failed")
	})
	if err != nil {
		return fmt.Errorf("%s: giving up after %d attempts: %w", name, attempt, err)
	}

	return nil
}
