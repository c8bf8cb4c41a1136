// Package cache keeps rendered page snapshots so repeated runs against the
// same URL skip the browser.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/loan-offers/internal/common"
)

// Store is a byte cache with per-entry expiry. Get reports a miss with
// ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Open returns a Redis store when cfg.RedisAddr is set and reachable, and an
// in-process store otherwise. The returned func releases the connection.
func Open(ctx context.Context, cfg common.CacheConfig, logger *slog.Logger) (Store, func()) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RedisAddr == "" {
		logger.Debug("cache.memory", "reason", "REDIS_ADDR not set")
		return NewMemoryCache(), func() {}
	}
	rc := NewRedisCache(cfg)
	if err := rc.Ping(ctx); err != nil {
		logger.Warn("cache.redis.unavailable", "addr", cfg.RedisAddr, "err", err)
		_ = rc.Close()
		return NewMemoryCache(), func() {}
	}
	logger.Info("cache.redis.ok", "addr", cfg.RedisAddr)
	return rc, func() { _ = rc.Close() }
}
