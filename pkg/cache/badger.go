package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore is a Store backed by an embedded BadgerDB, giving single-machine
// runs a response cache that survives across invocations without requiring a
// Redis server. This is the CLI's default backend.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) a Badger-backed store at the given
// directory. An empty path opens an in-memory database, useful for tests.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger cache at %q: %w", path, err)
	}
	return &BadgerStore{db: db}, nil
}

// NewBadgerStore wraps an already-open BadgerDB.
func NewBadgerStore(db *badger.DB) *BadgerStore {
	if db == nil {
		panic("badger db cannot be nil")
	}
	return &BadgerStore{db: db}
}

// Get retrieves a cached response body by request URL.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			CacheMisses.WithLabelValues("badger").Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("badger", "get").Inc()
		return nil, fmt.Errorf("badger get: %w", err)
	}
	CacheHits.WithLabelValues("badger").Inc()
	return value, nil
}

// Put stores a response body keyed by request URL.
func (s *BadgerStore) Put(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		CacheErrors.WithLabelValues("badger", "put").Inc()
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
