package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/recommendation/models"
)

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) SendMessage(_ context.Context, chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID, text})
	return f.err
}

func setup(t *testing.T, notifier Notifier) (*redis.Client, *StreamPublisher, *RedisStreamWorker) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	w := NewRedisStreamWorker(rdb, notifier, "recommendations:events")
	w.block = 10 * time.Millisecond
	require.NoError(t, w.ensureGroup(context.Background()))

	return rdb, NewStreamPublisher(rdb, "recommendations:events"), w
}

func event(to string) models.Event {
	return models.Event{
		RecommendationID: "r1",
		FromUserID:       "1",
		FromUsername:     "alice",
		ToUserID:         to,
		AnimeTitle:       "Bleach",
		Comment:          "go <now>",
	}
}

func TestWorker_NotifiesRecipient(t *testing.T) {
	notifier := &fakeNotifier{}
	rdb, pub, w := setup(t, notifier)
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, event("987")))
	require.NoError(t, w.poll(ctx))

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, int64(987), notifier.sent[0].chatID)
	assert.Contains(t, notifier.sent[0].text, "<b>alice</b>")
	assert.Contains(t, notifier.sent[0].text, "go &lt;now&gt;")

	pending, err := rdb.XPending(ctx, "recommendations:events", consumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestWorker_SkipsNonNumericRecipient(t *testing.T) {
	notifier := &fakeNotifier{}
	_, pub, w := setup(t, notifier)
	ctx := context.Background()

	require.NoError(t, pub.Publish(ctx, event("web-user")))
	require.NoError(t, w.poll(ctx))

	assert.Empty(t, notifier.sent)
}

func TestWorker_AcksFailedDelivery(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("bot was blocked by the user")}
	rdb, pub, w := setup(t, notifier)
	ctx := context.Background()
	failed := metrics.NotificationsSent.WithLabelValues("error")
	before := testutil.ToFloat64(failed)

	require.NoError(t, pub.Publish(ctx, event("987")))
	require.NoError(t, w.poll(ctx))

	assert.Equal(t, before+1, testutil.ToFloat64(failed))

	pending, err := rdb.XPending(ctx, "recommendations:events", consumerGroup).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}

func TestWorker_EmptyPollIsNotAnError(t *testing.T) {
	_, _, w := setup(t, &fakeNotifier{})
	assert.NoError(t, w.poll(context.Background()))
}

func TestWorker_StartStopsOnCancel(t *testing.T) {
	_, _, w := setup(t, &fakeNotifier{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestFormatNotification_WithoutComment(t *testing.T) {
	text := FormatNotification(models.Event{AnimeTitle: "Naruto"})
	assert.Equal(t, "<b>Someone</b> recommends you <b>Naruto</b>", text)
}

func TestFormatNotification_SenderNames(t *testing.T) {
	both := FormatNotification(models.Event{FromUsername: "Alice", FromHandle: "alice_tg", AnimeTitle: "Naruto"})
	assert.Equal(t, "<b>Alice</b> (@alice_tg) recommends you <b>Naruto</b>", both)

	handleOnly := FormatNotification(models.Event{FromHandle: "a<b", AnimeTitle: "Naruto"})
	assert.Equal(t, "<b>@a&lt;b</b> recommends you <b>Naruto</b>", handleOnly)
}

func TestNoopPublisher(t *testing.T) {
	assert.NoError(t, NoopPublisher{}.Publish(context.Background(), event("1")))
}
