package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKVStore implements KVStore on Redis string keys namespaced by prefix.
type RedisKVStore struct {
	client redis.Cmdable
	prefix string
}

// NewRedisKVStore creates a RedisKVStore. An empty prefix defaults to "learnerbot".
func NewRedisKVStore(client redis.Cmdable, prefix string) *RedisKVStore {
	if prefix == "" {
		prefix = "learnerbot"
	}
	return &RedisKVStore{client: client, prefix: prefix}
}

// DialRedis connects to addr and verifies the server answers a PING.
func DialRedis(ctx context.Context, addr, password string, database int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          database,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func (s *RedisKVStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("key %q: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("reading key %q: %w", key, err)
	}
	return value, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("writing key %q: %w", key, err)
	}
	return nil
}

func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("deleting key %q: %w", key, err)
	}
	return nil
}
