package objectstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docubrain/docubrain/domain/service"
)

func put(t *testing.T, store *MemoryStore, key, content string) {
	t.Helper()
	data := []byte(content)
	require.NoError(t, store.Put(context.Background(), key, bytes.NewReader(data), int64(len(data)), "image/jpeg"))
}

func TestMemoryStore_PutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	put(t, store, "a.jpg", "hello")

	data, err := store.Get(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// Overwrite wins.
	put(t, store, "a.jpg", "world")
	data, err = store.Get(ctx, "a.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), data)
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrObjectNotFound)
}

func TestMemoryStore_CopyAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	put(t, store, "src", "content")

	require.NoError(t, store.Copy(ctx, "src", "dst"))

	data, err := store.Get(ctx, "dst")
	require.NoError(t, err)
	assert.Equal(t, []byte("content"), data)

	require.NoError(t, store.Delete(ctx, "src"))
	_, err = store.Get(ctx, "src")
	assert.ErrorIs(t, err, service.ErrObjectNotFound)

	assert.Error(t, store.Copy(ctx, "missing", "anywhere"))
}

func TestMove(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	put(t, store, "a.jpg", "image")

	require.NoError(t, service.Move(ctx, store, "a.jpg", "1/ABC123/20250101000000.jpg"))

	data, err := store.Get(ctx, "1/ABC123/20250101000000.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("image"), data)

	_, err = store.Get(ctx, "a.jpg")
	assert.ErrorIs(t, err, service.ErrObjectNotFound)
}
