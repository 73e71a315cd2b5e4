package tokenstore

import (
	"context"
	"fmt"

	"github.com/brizzai/dishom-client/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// NewStorage builds the Storage selected by the configuration
func NewStorage(lc fx.Lifecycle, cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverFile:
		return NewFileStorage(cfg.Storage.Path), nil
	case config.StorageDriverMemory:
		return NewMemoryStorage(), nil
	case config.StorageDriverRedis:
		storage := NewRedisStorage(redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		}), cfg.Storage.Redis.Prefix)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := storage.HealthCheck(ctx); err != nil {
					return fmt.Errorf("redis storage unreachable: %w", err)
				}
				return nil
			},
			OnStop: func(context.Context) error {
				return storage.Close()
			},
		})
		return storage, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

// Module provides the token store dependencies
var Module = fx.Module("tokenstore",
	fx.Provide(
		NewStorage,
		NewStore,
	),
)
