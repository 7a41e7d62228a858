package jikan

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{"data":[{"mal_id":20,"title":"Naruto","images":{"jpg":{"image_url":"https://cdn/20.jpg"}},"year":2002,"score":8.0,"synopsis":"Ninja"}]}`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime", r.URL.Path)
		assert.Equal(t, "naruto", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		assert.Equal(t, "true", r.URL.Query().Get("sfw"))
		_, _ = w.Write([]byte(searchBody))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second})
	list, err := c.Search(context.Background(), "naruto", 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 20, list[0].MalID)
	assert.Equal(t, "https://cdn/20.jpg", list[0].Images.JPG.ImageURL)
	require.NotNil(t, list[0].Year)
	assert.Equal(t, 2002, *list[0].Year)
}

func TestGetByID_NotFoundDoesNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":404}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, FailureThreshold: 2})
	for i := 0; i < 3; i++ {
		_, err := c.GetByID(context.Background(), 999999)
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "closed", c.BreakerState())
}

func TestBreakerOpensOnUpstreamFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, FailureThreshold: 2, BreakerTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := c.Search(context.Background(), "x", 1)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	}

	_, err := c.Search(context.Background(), "x", 1)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second, RequestsPerSecond: 0.01})
	_, err := c.Search(context.Background(), "a", 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.Search(ctx, "b", 1)
	assert.Error(t, err)
}
