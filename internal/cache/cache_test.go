package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/loan-offers/internal/common"
	"github.com/joseph-ayodele/loan-offers/internal/render"
)

type countingRenderer struct {
	calls int
	err   error
}

func (r *countingRenderer) Render(_ context.Context, url string) (render.Snapshot, error) {
	r.calls++
	if r.err != nil {
		return render.Snapshot{}, r.err
	}
	return render.Snapshot{URL: url, Text: "HDFC Bank 10.5%", RenderedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), Pass: 2}, nil
}

type brokenStore struct{ sets int }

func (b *brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (b *brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	b.sets++
	return errors.New("connection refused")
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Set(ctx, "forever", []byte("f"), 0))

	v, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(time.Minute)
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok)
	_, ok, _ = m.Get(ctx, "missing")
	assert.False(t, ok)
}

func TestCachingRenderer(t *testing.T) {
	ctx := context.Background()
	next := &countingRenderer{}
	r := NewCachingRenderer(next, NewMemoryCache(), time.Hour, nil)

	first, err := r.Render(ctx, "https://example.test/loans")
	require.NoError(t, err)
	second, err := r.Render(ctx, "https://example.test/loans")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)

	_, err = r.Render(ctx, "https://example.test/other")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachingRenderer_StoreFailureFallsThrough(t *testing.T) {
	store := &brokenStore{}
	next := &countingRenderer{}
	r := NewCachingRenderer(next, store, time.Hour, nil)

	snap, err := r.Render(context.Background(), "https://example.test/loans")
	require.NoError(t, err)
	assert.Equal(t, "HDFC Bank 10.5%", snap.Text)
	assert.Equal(t, 1, store.sets)
}

func TestCachingRenderer_RenderErrorNotCached(t *testing.T) {
	store := NewMemoryCache()
	next := &countingRenderer{err: errors.New("timeout")}
	r := NewCachingRenderer(next, store, time.Hour, nil)

	_, err := r.Render(context.Background(), "u")
	require.Error(t, err)
	_, ok, _ := store.Get(context.Background(), SnapshotKey("u"))
	assert.False(t, ok)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, SnapshotKey("a"), SnapshotKey("a"))
	assert.NotEqual(t, SnapshotKey("a"), SnapshotKey("b"))
	assert.Len(t, SnapshotKey("a"), len("snapshot:")+64)
}

func TestOpen_FallsBackToMemory(t *testing.T) {
	store, closeFn := Open(context.Background(), common.CacheConfig{}, nil)
	defer closeFn()
	assert.IsType(t, &MemoryCache{}, store)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	store, closeFn = Open(ctx, common.CacheConfig{RedisAddr: "127.0.0.1:1"}, nil)
	defer closeFn()
	assert.IsType(t, &MemoryCache{}, store)
}
