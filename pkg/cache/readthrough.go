package cache

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Store is what FindAndCache reads views from and writes them back to. *Cache satisfies it;
// tests use an in-memory map.
type Store interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// FetchFunc computes a value from storage when the cache cannot serve it.
type FetchFunc[T any] func(ctx context.Context) (T, error)

const (
	refreshTimeout = 15 * time.Second
	writeTimeout   = 5 * time.Second

	// TTLs at or below jitterFloor are stored as given.
	jitterFloor = 30 * time.Second
	jitterSpan  = 30
)

// jitteredTTL spreads expiry of views cached in the same burst, such as every chart of a
// dashboard load, over ±15s.
func jitteredTTL(ttl time.Duration) time.Duration {
	if ttl <= jitterFloor {
		return ttl
	}
	return ttl + time.Duration(rand.Intn(jitterSpan)-jitterSpan/2)*time.Second
}

// writeBack stores v under key on a fresh context, so a cancelled request still fills the
// cache. Failures are logged and dropped.
func writeBack(c Store, key string, v any, ttl time.Duration, logger *zap.Logger, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	ttl = jitteredTTL(ttl)
	if err := c.Set(ctx, key, v, ttl); err != nil {
		logger.Warn("cache write failed",
			zap.String("key", key),
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	logger.Debug("cache written",
		zap.String("key", key),
		zap.String("reason", reason),
		zap.Duration("ttl", ttl))
}

// refreshAhead recomputes a view that was just served from cache. Concurrent hits on the
// same key share one recomputation.
func refreshAhead[T any](c Store, sf *singleflight.Group, key string, ttl time.Duration, logger *zap.Logger, fn FetchFunc[T]) {
	go func() {
		time.Sleep(time.Duration(rand.Intn(1000)) * time.Millisecond)

		_, _, _ = sf.Do(key+":refresh", func() (any, error) {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			v, err := fn(ctx)
			if err != nil {
				logger.Warn("view refresh failed", zap.String("key", key), zap.Error(err))
				return nil, err
			}
			writeBack(c, key, v, ttl, logger, "refresh")
			return v, nil
		})
	}()
}

// computeOnMiss runs fn on the caller's context and caches the result without making the
// caller wait for the write.
func computeOnMiss[T any](ctx context.Context, c Store, key string, ttl time.Duration, logger *zap.Logger, fn FetchFunc[T]) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		logger.Error("view computation failed", zap.String("key", key), zap.Error(err))
		return v, err
	}
	go writeBack(c, key, v, ttl, logger, "miss")
	return v, nil
}

// FindAndCache serves a dashboard view from c, computing it with fn when c has nothing.
// A hit returns at once and schedules a refresh. A miss or an unreachable cache computes
// the view, with concurrent requests for one key sharing the computation. With a nil store
// only the sharing remains.
func FindAndCache[T any](
	ctx context.Context,
	c Store,
	sf *singleflight.Group,
	key string,
	ttl time.Duration,
	logger *zap.Logger,
	fn FetchFunc[T],
) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	compute := func() (any, error) { return fn(ctx) }
	if c != nil {
		var cached T
		switch err := c.Get(ctx, key, &cached); {
		case err == nil:
			logger.Debug("view cache hit", zap.String("key", key))
			refreshAhead(c, sf, key, ttl, logger, fn)
			return cached, nil
		case errors.Is(err, ErrMiss):
			logger.Debug("view cache miss", zap.String("key", key))
		default:
			logger.Warn("view cache unavailable, computing", zap.String("key", key), zap.Error(err))
		}
		compute = func() (any, error) { return computeOnMiss(ctx, c, key, ttl, logger, fn) }
	}

	v, err, shared := sf.Do(key, compute)
	if err != nil {
		var zero T
		return zero, err
	}
	value, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cached view %q has type %T", key, v)
	}
	if shared {
		logger.Debug("view computation shared", zap.String("key", key))
	}
	return value, nil
}
