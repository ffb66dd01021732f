package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces gradient entries within a shared Redis instance.
const redisKeyPrefix = "gradient:response:"

// RedisStore is a Store backed by Redis, for sharing the response cache
// between machines or across processes.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{redis: redisClient}
}

// Get retrieves a cached response body by request URL.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			CacheMisses.WithLabelValues("redis").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("redis", "get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}
	CacheHits.WithLabelValues("redis").Inc()
	return data, nil
}

// Put stores a response body keyed by request URL. Entries are written
// without a TTL.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.redis.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		CacheErrors.WithLabelValues("redis", "put").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
