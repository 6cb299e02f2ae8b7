// Package redisstore keeps the bearer credential in Redis so several headless
// clients can share one signed-in session.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/sanctyr/credential"
	"github.com/redis/go-redis/v9"
)

var _ credential.Store = (*RedisStore)(nil)

type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// New wraps an existing client. The credential lives under "<prefix>:sanctyr_token";
// a zero ttl keeps it until removed.
func New(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	key := credential.Key
	if prefix != "" {
		key = prefix + ":" + credential.Key
	}
	return &RedisStore{client: client, key: key, ttl: ttl}
}

// NewWithURL dials from a redis:// URL.
func NewWithURL(url, prefix string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("[RedisStore] parse url: %w", err)
	}
	return New(redis.NewClient(opts), prefix, ttl), nil
}

// Key returns the redis key holding the credential.
func (rs *RedisStore) Key() string {
	return rs.key
}

func (rs *RedisStore) Get(ctx context.Context) (string, error) {
	value, err := rs.client.Get(ctx, rs.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("[RedisStore] get: %w", err)
	}
	return value, nil
}

func (rs *RedisStore) Set(ctx context.Context, cred string) error {
	if err := rs.client.Set(ctx, rs.key, cred, rs.ttl).Err(); err != nil {
		return fmt.Errorf("[RedisStore] set: %w", err)
	}
	return nil
}

func (rs *RedisStore) Remove(ctx context.Context) error {
	if err := rs.client.Del(ctx, rs.key).Err(); err != nil {
		return fmt.Errorf("[RedisStore] del: %w", err)
	}
	return nil
}

func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
