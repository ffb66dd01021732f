package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemorySize is the default number of responses a MemoryStore holds.
// A response covers a whole batch (up to 350 locations), so even modest sizes
// cover large graphs.
const DefaultMemorySize = 4096

// MemoryStore is a bounded in-memory Store backed by an LRU cache. It does
// not persist across runs; use BadgerStore or RedisStore for that.
type MemoryStore struct {
	lru *lru.Cache[string, []byte]
}

// NewMemoryStore creates a memory store holding at most size responses.
// A size <= 0 selects DefaultMemorySize.
func NewMemoryStore(size int) (*MemoryStore, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	c, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &MemoryStore{lru: c}, nil
}

// Get retrieves a cached response body by request URL.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := s.lru.Get(key)
	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}
	CacheHits.WithLabelValues("memory").Inc()
	return value, nil
}

// Put stores a response body keyed by request URL.
func (s *MemoryStore) Put(_ context.Context, key string, value []byte) error {
	s.lru.Add(key, value)
	return nil
}

// Len returns the number of cached responses.
func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
