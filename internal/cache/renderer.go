package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/loan-offers/internal/render"
)

// CachingRenderer serves snapshots from a Store and renders on a miss.
type CachingRenderer struct {
	next   render.Renderer
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachingRenderer(next render.Renderer, store Store, ttl time.Duration, logger *slog.Logger) *CachingRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingRenderer{next: next, store: store, ttl: ttl, logger: logger}
}

// SnapshotKey is the cache key for a URL.
func SnapshotKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "snapshot:" + hex.EncodeToString(sum[:])
}

func (c *CachingRenderer) Render(ctx context.Context, url string) (render.Snapshot, error) {
	key := SnapshotKey(url)
	data, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.logger.Warn("cache.get.failed", "url", url, "err", err)
	case ok:
		var snap render.Snapshot
		if err := json.Unmarshal(data, &snap); err == nil {
			c.logger.Debug("cache.hit", "url", url, "rendered_at", snap.RenderedAt)
			return snap, nil
		}
		c.logger.Warn("cache.decode.failed", "url", url)
	}

	snap, err := c.next.Render(ctx, url)
	if err != nil {
		return render.Snapshot{}, err
	}
	if data, err := json.Marshal(snap); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("cache.set.failed", "url", url, "err", err)
		}
	}
	return snap, nil
}
