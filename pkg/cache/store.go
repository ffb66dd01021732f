// Package cache provides response caching for elevation API calls.
//
// Entries are keyed by the fully-formed request URL, which is a deterministic
// function of a batch's rounded coordinates and fixed request parameters, so
// identical batches across repeated runs deduplicate to a single remote call.
// Entries carry no expiry; elevation data for a fixed set of coordinates does
// not go stale.
package cache

import (
	"context"
	"errors"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the cache.
	ErrCacheMiss = errors.New("cache miss")
)

// Store is the cache collaborator consumed by the batch fetcher. Get returns
// ErrCacheMiss when the key is absent; any other error is a backend failure.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
