package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisStreamRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamRepository(client *redis.Client) ports.StreamRepository {
	return &RedisStreamRepository{
		client: client,
		prefix: "paystream:stream:",
	}
}

func (r *RedisStreamRepository) streamKey(id domain.StreamID) string {
	return r.prefix + strconv.FormatUint(uint64(id), 10)
}

func (r *RedisStreamRepository) counterKey() string {
	return r.prefix + "next_id"
}

func (r *RedisStreamRepository) NextID(ctx context.Context) (domain.StreamID, error) {
	id, err := r.client.Incr(ctx, r.counterKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment stream counter: %w", err)
	}
	return domain.StreamID(id), nil
}

func (r *RedisStreamRepository) Get(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	data, err := r.client.Get(ctx, r.streamKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream from Redis: %w", err)
	}

	var stream domain.Stream
	if err := json.Unmarshal([]byte(data), &stream); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stream: %w", err)
	}

	return &stream, nil
}

func (r *RedisStreamRepository) Put(ctx context.Context, stream *domain.Stream) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal stream: %w", err)
	}

	// Stream records are audit records; they never expire.
	if err := r.client.Set(ctx, r.streamKey(stream.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set stream in Redis: %w", err)
	}

	return nil
}

func (r *RedisStreamRepository) List(ctx context.Context) ([]*domain.Stream, error) {
	var streams []*domain.Stream
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if key == r.counterKey() {
			continue
		}

		data, err := r.client.Get(ctx, key).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get stream from Redis: %w", err)
		}

		var stream domain.Stream
		if err := json.Unmarshal([]byte(data), &stream); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stream: %w", err)
		}
		streams = append(streams, &stream)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan streams: %w", err)
	}
	return streams, nil
}
