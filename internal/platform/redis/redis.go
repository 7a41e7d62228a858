package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"anime-tracker-backend/internal/platform/retry"
)

// Client wraps go-redis client to allow future extensions.
type Client struct {
	*redis.Client
}

type Options struct {
	Addr     string
	Password string
	DB       int

	ConnectAttempts int
	ConnectDelay    time.Duration
}

// Open creates a new Redis client and pings it until it answers or the
// connect attempts run out.
func Open(ctx context.Context, opts Options) (*Client, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}

	c := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	policy := retry.Policy{Attempts: opts.ConnectAttempts, Delay: opts.ConnectDelay}
	err := policy.Do(ctx, "redis", func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return c.Ping(pingCtx).Err()
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	return &Client{Client: c}, nil
}

// Ping reports whether the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.Client.Ping(ctx).Err()
}
