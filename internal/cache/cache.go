// Package cache provides the read-through cache used for list queries.
// Entries carry an absolute deadline and a sliding window; a hit extends the
// entry to min(now+sliding, deadline).
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tuncrm/crm-api/internal/config"
	"go.uber.org/zap"
)

// Cache stores opaque byte values by key
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// Expiry holds the two lifetimes every entry is subject to
type Expiry struct {
	Absolute time.Duration
	Sliding  time.Duration
}

// next returns when an entry touched at now should expire
func (e Expiry) next(now, deadline time.Time) time.Time {
	exp := now.Add(e.Sliding)
	if e.Sliding <= 0 || exp.After(deadline) {
		return deadline
	}
	return exp
}

// New builds the backend named in the configuration
func New(ctx context.Context, cfg *config.CacheConfig, logger *zap.Logger) (Cache, error) {
	expiry := Expiry{Absolute: cfg.AbsoluteTTLDuration(), Sliding: cfg.SlidingTTLDuration()}

	switch cfg.Backend {
	case "", "memory":
		logger.Info("Using in-memory cache",
			zap.Duration("absolute_ttl", expiry.Absolute),
			zap.Duration("sliding_ttl", expiry.Sliding))
		return NewMemoryCache(expiry), nil
	case "redis":
		c, err := DialRedis(ctx, &cfg.Redis, expiry)
		if err != nil {
			return nil, err
		}
		logger.Info("Using Redis cache", zap.String("addr", cfg.Redis.Addr))
		return c, nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// Fetch returns the cached value for key, or runs load and caches its result.
// Cache failures are logged and fall through to load.
func Fetch[T any](ctx context.Context, c Cache, logger *zap.Logger, key string, load func(context.Context) (T, error)) (T, error) {
	if c != nil {
		raw, ok, err := c.Get(ctx, key)
		if err != nil {
			logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			var v T
			if err := json.Unmarshal(raw, &v); err == nil {
				logger.Debug("cache hit", zap.String("key", key))
				return v, nil
			}
			logger.Warn("discarding undecodable cache entry", zap.String("key", key))
		}
	}

	v, err := load(ctx)
	if err != nil || c == nil {
		return v, err
	}

	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return v, nil
	}
	if err := c.Set(ctx, key, raw); err != nil {
		logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}
