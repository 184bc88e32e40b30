// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
)

// Default timeouts for Redis operations.
const (
	DefaultDialTimeout  = 5 * time.Second
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second

	// DefaultConnectAttempts bounds the startup connectivity check.
	DefaultConnectAttempts = 5
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	// Addrs lists the Redis endpoints. More than one address selects a
	// cluster client.
	Addrs []string

	// MasterName selects Sentinel failover when set.
	MasterName string

	Username string
	Password string
	DB       int

	// KeyPrefix namespaces session keys, e.g. "authfront:".
	KeyPrefix string

	// Timeouts (defaults: Dial=5s, Read=3s, Write=3s).
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// ConnectAttempts bounds the startup ping (default 5).
	ConnectAttempts uint
}

func (c *RedisConfig) validate() error {
	if len(c.Addrs) == 0 {
		return errors.New("at least one redis address is required")
	}
	if c.KeyPrefix == "" {
		return errors.New("key prefix is required")
	}
	return nil
}

// RedisBackend stores each session as a Redis hash with one field per key.
// The hash expires as a whole.
type RedisBackend struct {
	client    redis.UniversalClient
	keyPrefix string
}

// Compile-time interface check.
var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend connects to Redis, retrying the connectivity check with
// exponential backoff before giving up.
func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid redis configuration: %w", err)
	}

	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = DefaultConnectAttempts
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:        cfg.Addrs,
		MasterName:   cfg.MasterName,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, client.Ping(ctx).Err()
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(cfg.ConnectAttempts),
		backoff.WithNotify(func(err error, d time.Duration) {
			slog.Warn("redis not reachable, retrying", "error", err, "retry_in", d)
		}),
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisBackendWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisBackendWithClient creates a RedisBackend with a pre-configured
// client. This is useful for testing with miniredis.
func NewRedisBackendWithClient(client redis.UniversalClient, keyPrefix string) *RedisBackend {
	return &RedisBackend{client: client, keyPrefix: keyPrefix}
}

func (b *RedisBackend) key(id string) string {
	return b.keyPrefix + "session:" + id
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context, id string, keys []Key) (map[Key][]byte, error) {
	out := make(map[Key][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}

	vals, err := b.client.HMGet(ctx, b.key(id), names...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = []byte(s)
		}
	}
	return out, nil
}

// Store implements Backend.
func (b *RedisBackend) Store(ctx context.Context, id string, values map[Key][]byte, ttl time.Duration) error {
	if len(values) == 0 {
		return nil
	}

	args := make([]any, 0, len(values)*2)
	for k, data := range values {
		args = append(args, string(k), data)
	}

	key := b.key(id)
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, args...)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Remove implements Backend.
func (b *RedisBackend) Remove(ctx context.Context, id string, keys []Key) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	if err := b.client.HDel(ctx, b.key(id), names...).Err(); err != nil {
		return fmt.Errorf("failed to delete session fields: %w", err)
	}
	return nil
}

// Destroy implements Backend.
func (b *RedisBackend) Destroy(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, b.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis client connection.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}
