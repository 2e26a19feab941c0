package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore keeps each session as a Redis hash that expires ttl after the
// last write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore connects to the Redis server at url (redis://...) and checks
// it with a PING.
func NewRedisStore(ctx context.Context, url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl, prefix: "session:"}, nil
}

func (r *RedisStore) key(sid string) string {
	return r.prefix + sid
}

func (r *RedisStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.key(sid), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis hget: %w", err)
	}
	return v, true, nil
}

func (r *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.key(sid), key, value)
		pipe.Expire(ctx, r.key(sid), r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Take reads and deletes the field inside one MULTI/EXEC block.
func (r *RedisStore) Take(ctx context.Context, sid, key string) (string, bool, error) {
	var get *redis.StringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, r.key(sid), key)
		pipe.HDel(ctx, r.key(sid), key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", false, fmt.Errorf("redis take: %w", err)
	}

	v, err := get.Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis take: %w", err)
	}
	return v, true, nil
}

func (r *RedisStore) Remove(ctx context.Context, sid, key string) error {
	if err := r.client.HDel(ctx, r.key(sid), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}

func (r *RedisStore) Destroy(ctx context.Context, sid string) error {
	if err := r.client.Del(ctx, r.key(sid)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
