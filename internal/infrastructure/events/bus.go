package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"paystream/internal/core/domain"
	"paystream/pkg/retry"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bus fans stream events out to subscribers. Publication is advisory: the
// engine never fails an operation because a bus publish failed.
type Bus interface {
	Publish(ctx context.Context, event *domain.StreamEvent) error
	Subscribe(ctx context.Context, handler func(*domain.StreamEvent)) error
}

// MemoryBus is the in-process fan-out used with the memory and postgres
// backends.
type MemoryBus struct {
	handlers []func(*domain.StreamEvent)
	mu       sync.RWMutex
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

func (b *MemoryBus) Publish(ctx context.Context, event *domain.StreamEvent) error {
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(event)
	}
	return nil
}

func (b *MemoryBus) Subscribe(ctx context.Context, handler func(*domain.StreamEvent)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
	return nil
}

// RedisBus publishes over Redis pub/sub so every service instance and any
// directly-subscribed indexer sees the same ordered feed.
type RedisBus struct {
	client  *redis.Client
	channel string
	logger  *zap.SugaredLogger
	retry   retry.Config
}

func NewRedisBus(client *redis.Client, channel string, logger *zap.SugaredLogger) *RedisBus {
	cfg := retry.DefaultConfig()
	cfg.MaxAttempts = 2
	return &RedisBus{
		client:  client,
		channel: channel,
		logger:  logger,
		retry:   cfg,
	}
}

func (b *RedisBus) Publish(ctx context.Context, event *domain.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// A dropped event only delays the indexer until its next replay, so a
	// short retry is enough.
	err = retry.Retry(ctx, b.retry, func() error {
		return b.client.Publish(ctx, b.channel, data).Err()
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debugw("published event",
		"type", event.Type,
		"stream_id", event.StreamID,
		"seq", event.Seq,
	)
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context, handler func(*domain.StreamEvent)) error {
	pubsub := b.client.Subscribe(ctx, b.channel)

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event domain.StreamEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warnw("failed to unmarshal event",
						"error", err,
						"payload", msg.Payload,
					)
					continue
				}
				handler(&event)
			}
		}
	}()

	return nil
}
