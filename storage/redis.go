package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using Redis. It is intended for server-side
// hosts that embed the SDK and want cached users and states shared across
// processes.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string
	// Password is the optional server password.
	Password string
	// DB selects the Redis logical database.
	DB int
	// TTL is the expiration applied to stored values. Zero means no expiry.
	TTL time.Duration
}

// NewRedisStore creates a Store backed by Redis and verifies connectivity.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// Get retrieves a value.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

// Set stores a value.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Delete removes a value.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
