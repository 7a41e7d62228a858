// Package jikan is a small client for the Jikan v4 (MyAnimeList) REST API.
package jikan

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"anime-tracker-backend/internal/common/logger"
)

var ErrNotFound = errors.New("jikan: anime not found")

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("jikan: unexpected status %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64

	// Breaker opens after this many consecutive failures and probes again
	// after BreakerTimeout.
	FailureThreshold uint32
	BreakerTimeout   time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(cfg Config) *Client {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.BreakerTimeout == 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	settings := gobreaker.Settings{
		Name:        "jikan",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// 404 is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

// BreakerState exposes the breaker state for readiness reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// Search runs a safe-for-work title search.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Anime, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("sfw", "true")

	var resp searchResponse
	if err := c.get(ctx, "/anime", params, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetByID fetches the full record of one anime by MyAnimeList id.
func (c *Client) GetByID(ctx context.Context, malID int) (*Anime, error) {
	var resp detailsResponse
	if err := c.get(ctx, fmt.Sprintf("/anime/%d/full", malID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, ErrNotFound
	}
	return resp.Data, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dest interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path, params)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("jikan: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}

	return body, nil
}
