package repositories

import (
	"context"

	"paystream/internal/core/ports"
	"paystream/internal/infrastructure/repositories/memory"
	postgresrepo "paystream/internal/infrastructure/repositories/postgres"
	redisrepo "paystream/internal/infrastructure/repositories/redis"
	"paystream/pkg/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RepositoryFactory creates repositories for the configured backend, falling
// back to memory when the backend is unreachable.
type RepositoryFactory struct {
	backend     string
	redisClient *redis.Client
	pgPool      *pgxpool.Pool
	logger      *zap.SugaredLogger
}

func NewRepositoryFactory(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (*RepositoryFactory, error) {
	factory := &RepositoryFactory{
		backend: cfg.Storage.Backend,
		logger:  logger,
	}

	switch cfg.Storage.Backend {
	case "redis":
		client, err := redisrepo.NewRedisClient(
			ctx,
			cfg.Redis.Address,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
			logger,
		)
		if err != nil {
			logger.Warnw("failed to connect to Redis, falling back to memory repositories",
				"error", err,
			)
			factory.backend = "memory"
		} else {
			factory.redisClient = client
			logger.Info("using Redis repositories")
		}
	case "postgres":
		pool, err := postgresrepo.NewPool(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			logger.Warnw("failed to connect to Postgres, falling back to memory repositories",
				"error", err,
			)
			factory.backend = "memory"
		} else {
			factory.pgPool = pool
			logger.Info("using Postgres repositories")
		}
	}

	if factory.backend == "memory" {
		logger.Info("using memory repositories")
	}

	return factory, nil
}

func (f *RepositoryFactory) CreateStreamRepository() ports.StreamRepository {
	switch {
	case f.backend == "redis" && f.redisClient != nil:
		return redisrepo.NewRedisStreamRepository(f.redisClient)
	case f.backend == "postgres" && f.pgPool != nil:
		return postgresrepo.NewPostgresStreamRepository(f.pgPool)
	}
	return memory.NewMemoryStreamRepository()
}

func (f *RepositoryFactory) CreateProfileRepository() ports.ProfileRepository {
	switch {
	case f.backend == "redis" && f.redisClient != nil:
		return redisrepo.NewRedisProfileRepository(f.redisClient)
	case f.backend == "postgres" && f.pgPool != nil:
		return postgresrepo.NewPostgresProfileRepository(f.pgPool)
	}
	return memory.NewMemoryProfileRepository()
}

func (f *RepositoryFactory) CreateUserRepository() ports.UserRepository {
	// User accounts live in Redis when available; the Postgres backend keeps
	// them in memory since streams are the only durable table it owns.
	if f.backend == "redis" && f.redisClient != nil {
		return redisrepo.NewRedisUserRepository(f.redisClient)
	}
	return memory.NewMemoryUserRepository()
}

// RedisClient exposes the shared client for the event bus; nil unless the
// redis backend is active.
func (f *RepositoryFactory) RedisClient() *redis.Client {
	return f.redisClient
}

// Close closes backend connections if used.
func (f *RepositoryFactory) Close() error {
	if f.pgPool != nil {
		f.pgPool.Close()
	}
	if f.redisClient != nil {
		return redisrepo.CloseRedisClient(f.redisClient)
	}
	return nil
}

// HealthCheck checks backend connection health.
func (f *RepositoryFactory) HealthCheck(ctx context.Context) error {
	if f.redisClient != nil {
		return f.redisClient.Ping(ctx).Err()
	}
	if f.pgPool != nil {
		return f.pgPool.Ping(ctx)
	}
	return nil
}
