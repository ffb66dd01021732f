package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestBadger opens an in-memory badger store, closed on cleanup.
func openTestBadger(t *testing.T) *BadgerStore {
	t.Helper()

	store, err := OpenBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestBadgerStore_PutAndGet(t *testing.T) {
	store := openTestBadger(t)
	ctx := context.Background()

	key := "https://example.com/elevation/json?locations=47.37000,8.54000&key=k"
	value := []byte(`{"results":[{"elevation":408.2}],"status":"OK"}`)

	require.NoError(t, store.Put(ctx, key, value))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, got)
}

func TestBadgerStore_Miss(t *testing.T) {
	store := openTestBadger(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestBadgerStore_PersistsAcrossReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	store, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Put(ctx, "key", []byte("value")))
	require.NoError(t, store.Close())

	reopened, err := OpenBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}
