package workers

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"anime-tracker-backend/internal/common/logger"
	"anime-tracker-backend/internal/common/metrics"
	"anime-tracker-backend/internal/features/recommendation/models"
)

const (
	consumerGroup = "anime_tracker_notifiers"

	eventRecommendationSent = "recommendation_sent"
)

// StreamPublisher appends recommendation events to a Redis stream.
type StreamPublisher struct {
	rdb    *redis.Client
	stream string
}

func NewStreamPublisher(rdb *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{rdb: rdb, stream: stream}
}

func (p *StreamPublisher) Publish(ctx context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		// поток не растёт бесконечно
		MaxLen: 10000,
		Approx: true,
		Values: map[string]interface{}{
			"type":    eventRecommendationSent,
			"payload": string(payload),
		},
	}).Err()
}

// NoopPublisher drops events; used when there is no Redis to carry them.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.Event) error { return nil }

// Notifier delivers a text message to a Telegram chat.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type RedisStreamWorker struct {
	rdb      *redis.Client
	notifier Notifier
	stream   string
	consumer string
	block    time.Duration
}

func NewRedisStreamWorker(rdb *redis.Client, notifier Notifier, stream string) *RedisStreamWorker {
	host, _ := os.Hostname()
	if host == "" {
		host = "worker"
	}
	return &RedisStreamWorker{
		rdb:      rdb,
		notifier: notifier,
		stream:   stream,
		consumer: host + "-" + strconv.Itoa(os.Getpid()),
		block:    5 * time.Second,
	}
}

// Start listens to the stream until ctx is cancelled.
func (w *RedisStreamWorker) Start(ctx context.Context) {
	if err := w.ensureGroup(ctx); err != nil {
		logger.Error().Err(err).Str("stream", w.stream).Msg("Error creating consumer group")
		return
	}

	logger.Info().Str("stream", w.stream).Str("consumer", w.consumer).Msg("Starting Redis stream worker")

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Stopping Redis stream worker")
			return
		default:
		}

		if err := w.poll(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("Error reading from stream")
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (w *RedisStreamWorker) ensureGroup(ctx context.Context) error {
	// "0": события, опубликованные до первого запуска, тоже будут обработаны
	err := w.rdb.XGroupCreateMkStream(ctx, w.stream, consumerGroup, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// poll reads one batch, handles and acknowledges it. A timeout without
// messages is not an error.
func (w *RedisStreamWorker) poll(ctx context.Context) error {
	entries, err := w.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    consumerGroup,
		Consumer: w.consumer,
		Streams:  []string{w.stream, ">"},
		Count:    10,
		Block:    w.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	for _, stream := range entries {
		for _, msg := range stream.Messages {
			w.processMessage(ctx, msg.Values)
			if err := w.rdb.XAck(ctx, w.stream, consumerGroup, msg.ID).Err(); err != nil {
				logger.Warn().Err(err).Str("message_id", msg.ID).Msg("Failed to ack stream message")
			}
		}
	}

	return nil
}

func (w *RedisStreamWorker) processMessage(ctx context.Context, values map[string]interface{}) {
	eventType, _ := values["type"].(string)
	if eventType != eventRecommendationSent {
		return
	}

	payload, _ := values["payload"].(string)
	var event models.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		logger.Warn().Err(err).Msg("Invalid recommendation event payload")
		metrics.NotificationsSent.WithLabelValues("invalid").Inc()
		return
	}

	chatID, err := strconv.ParseInt(event.ToUserID, 10, 64)
	if err != nil {
		// получатель без числового Telegram ID (например, заведён вручную)
		metrics.NotificationsSent.WithLabelValues("skipped").Inc()
		return
	}

	if err := w.notifier.SendMessage(ctx, chatID, FormatNotification(event)); err != nil {
		logger.Warn().Err(err).
			Str("recommendation_id", event.RecommendationID).
			Int64("chat_id", chatID).
			Msg("Failed to send recommendation notification")
		metrics.NotificationsSent.WithLabelValues("error").Inc()
		return
	}

	metrics.NotificationsSent.WithLabelValues("sent").Inc()
}

// FormatNotification renders the bot message for event.
func FormatNotification(event models.Event) string {
	var from string
	switch {
	case event.FromUsername != "" && event.FromHandle != "":
		from = fmt.Sprintf("<b>%s</b> (@%s)", html.EscapeString(event.FromUsername), html.EscapeString(event.FromHandle))
	case event.FromUsername != "":
		from = "<b>" + html.EscapeString(event.FromUsername) + "</b>"
	case event.FromHandle != "":
		from = "<b>@" + html.EscapeString(event.FromHandle) + "</b>"
	default:
		from = "<b>Someone</b>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s recommends you <b>%s</b>", from, html.EscapeString(event.AnimeTitle))
	if event.Comment != "" {
		fmt.Fprintf(&b, "\n\n<i>%s</i>", html.EscapeString(event.Comment))
	}
	return b.String()
}
