package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisUserRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisUserRepository(client *redis.Client) ports.UserRepository {
	return &RedisUserRepository{
		client: client,
		prefix: "paystream:user:",
	}
}

func (r *RedisUserRepository) usernameKey(username string) string {
	return r.prefix + "name:" + username
}

func (r *RedisUserRepository) addressKey(addr domain.Address) string {
	return r.prefix + "addr:" + string(addr)
}

func (r *RedisUserRepository) Create(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	created, err := r.client.SetNX(ctx, r.usernameKey(user.Username), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to create user in Redis: %w", err)
	}
	if !created {
		return domain.ErrUserAlreadyExists
	}

	created, err = r.client.SetNX(ctx, r.addressKey(user.Address), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to index user address in Redis: %w", err)
	}
	if !created {
		r.client.Del(ctx, r.usernameKey(user.Username))
		return domain.ErrUserAlreadyExists
	}

	return nil
}

func (r *RedisUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.get(ctx, r.usernameKey(username))
}

func (r *RedisUserRepository) GetByAddress(ctx context.Context, addr domain.Address) (*domain.User, error) {
	return r.get(ctx, r.addressKey(addr))
}

func (r *RedisUserRepository) get(ctx context.Context, key string) (*domain.User, error) {
	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Redis: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}
