package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/powderscout/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps cache entries in Redis under a common key prefix.
// Entries never expire; invalidation is explicit.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis backed store
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return data, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

var _ Store = (*RedisStore)(nil)

// Open returns the store selected by the cache config together with a
// function releasing it. The SQL store shares db and needs no cleanup.
func Open(ctx context.Context, db *sqlx.DB, dbType config.DBType, cfg config.CacheConfig) (Store, func() error, error) {
	if cfg.Backend != config.CacheBackendRedis {
		return NewStore(db, dbType), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Redis.Addr, err)
	}
	return NewRedisStore(client, cfg.Redis.Prefix), client.Close, nil
}

// IsSeeded reports whether the store already holds a catalog
func IsSeeded(ctx context.Context, store Store) (bool, error) {
	data, err := store.Get(ctx, KeyResorts)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}
