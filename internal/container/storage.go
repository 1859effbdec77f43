package container

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/keygate/internal/credential"
	"github.com/serroba/keygate/internal/store"
	"github.com/serroba/keygate/internal/usage"
	"go.uber.org/zap"
)

const startupTimeout = 10 * time.Second

// Storage is the durable backend for keys and usage events.
type Storage interface {
	credential.Repository
	usage.EventStore
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
}

// RedisClient owns the shared Redis connection pool.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the connection pool.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// RedisPackage provides the shared Redis client. It only connects when
// something invokes it.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)

		return &RedisClient{Client: redis.NewClient(&redis.Options{Addr: opts.RedisAddr})}, nil
	})
}

// StoragePackage provides the configured Storage, migrated and ready.
func StoragePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (Storage, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		var s Storage

		switch opts.Storage {
		case StoragePostgres:
			pool, err := store.NewPostgresPool(ctx, opts.DatabaseURL)
			if err != nil {
				return nil, err
			}

			s = store.NewPostgresStore(pool)
		case StorageRedis:
			s = store.NewRedisStore(do.MustInvoke[*RedisClient](i).Client)
		default:
			s = store.NewMemoryStore()
		}

		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}

		logger.Info("storage ready", zap.String("backend", opts.Storage))

		return s, nil
	})
}
