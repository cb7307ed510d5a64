package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisProfileRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisProfileRepository(client *redis.Client) ports.ProfileRepository {
	return &RedisProfileRepository{
		client: client,
		prefix: "paystream:profile:",
	}
}

func (r *RedisProfileRepository) senderKey(addr domain.Address) string {
	return r.prefix + string(addr) + ":sender"
}

func (r *RedisProfileRepository) receiverKey(addr domain.Address) string {
	return r.prefix + string(addr) + ":receiver"
}

func (r *RedisProfileRepository) Index(ctx context.Context, stream *domain.Stream) error {
	id := strconv.FormatUint(uint64(stream.ID), 10)

	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, r.senderKey(stream.Sender), id)
	pipe.SAdd(ctx, r.receiverKey(stream.Receiver), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to index stream parties: %w", err)
	}
	return nil
}

func (r *RedisProfileRepository) Get(ctx context.Context, addr domain.Address) (*domain.UserProfile, error) {
	asSender, err := r.members(ctx, r.senderKey(addr))
	if err != nil {
		return nil, err
	}
	asReceiver, err := r.members(ctx, r.receiverKey(addr))
	if err != nil {
		return nil, err
	}

	return &domain.UserProfile{
		Address:     addr,
		AsSender:    asSender,
		AsReceiver:  asReceiver,
		LastUpdated: time.Now(),
	}, nil
}

func (r *RedisProfileRepository) members(ctx context.Context, key string) ([]domain.StreamID, error) {
	raw, err := r.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read profile set: %w", err)
	}

	ids := make([]domain.StreamID, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			// Skip malformed entries; the index is best-effort.
			continue
		}
		ids = append(ids, domain.StreamID(id))
	}
	return ids, nil
}
