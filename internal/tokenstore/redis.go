package tokenstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps records in redis so that several processes share one
// session. Writes are plain SETs, the last writer wins.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a RedisStorage using client, keys are namespaced by prefix
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return val, err
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisStorage) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// HealthCheck pings the redis server
func (r *RedisStorage) HealthCheck(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the redis connection pool
func (r *RedisStorage) Close() error {
	return r.client.Close()
}
