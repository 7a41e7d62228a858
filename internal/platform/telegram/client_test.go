package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessage(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient("123:ABC", WithBaseURL(srv.URL+"/"))
	require.True(t, c.Enabled())

	require.NoError(t, c.SendMessage(context.Background(), 42, "hello"))
	assert.Equal(t, "/bot123:ABC/sendMessage", gotPath)
	assert.Equal(t, "42", gotChat)
	assert.Equal(t, "hello", gotText)
}

func TestSendMessage_Errors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		check func(t *testing.T, err error)
	}{
		{
			name: "rate limited",
			body: `{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":3}}`,
			check: func(t *testing.T, err error) {
				var rps *RPSError
				require.True(t, errors.As(err, &rps))
				assert.Equal(t, 3*time.Second, rps.RetryAfter)
			},
		},
		{
			name: "blocked by user",
			body: `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, 403, apiErr.Code)
			},
		},
		{
			name: "garbage",
			body: `<html>`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "failed to parse response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(srv.Close)

			err := NewClient("t", WithBaseURL(srv.URL)).SendMessage(context.Background(), 1, "x")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestEnabled(t *testing.T) {
	assert.False(t, NewClient("").Enabled())
}
