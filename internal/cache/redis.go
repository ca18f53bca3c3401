package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

// RedisRemote is a shared Remote tier backed by Redis. Keys are namespaced by
// prefix so several caches can share one database.
type RedisRemote struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRemote connects to the Redis server at url and verifies it with PING.
func NewRedisRemote(ctx context.Context, url, prefix string) (*RedisRemote, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, eris.Wrap(err, "cache: parse redis url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrap(err, "cache: redis ping")
	}
	return &RedisRemote{client: client, prefix: prefix}, nil
}

// NewRedisRemoteFromClient wraps an existing client.
func NewRedisRemoteFromClient(client redis.UniversalClient, prefix string) *RedisRemote {
	return &RedisRemote{client: client, prefix: prefix}
}

func (r *RedisRemote) key(k string) string {
	return r.prefix + k
}

// GetCached implements Remote.
func (r *RedisRemote) GetCached(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: redis get")
	}
	return b, true, nil
}

// SetCached implements Remote.
func (r *RedisRemote) SetCached(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	return eris.Wrap(r.client.Set(ctx, r.key(key), payload, ttl).Err(), "cache: redis set")
}

// DeleteCached implements Remote.
func (r *RedisRemote) DeleteCached(ctx context.Context, key string) error {
	return eris.Wrap(r.client.Del(ctx, r.key(key)).Err(), "cache: redis del")
}

// Close releases the client connection.
func (r *RedisRemote) Close() error {
	return r.client.Close()
}
