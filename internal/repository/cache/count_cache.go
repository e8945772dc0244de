// Package cache memoizes list totals in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/directory-service/internal/config"
	"github.com/maxviazov/directory-service/internal/repository"
	"github.com/maxviazov/directory-service/pkg/paginate"
)

// NewClient connects to Redis and pings it.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type pinger struct{ client redis.Cmdable }

// NewPinger adapts client to the readiness probe.
func NewPinger(client redis.Cmdable) repository.Pinger { return pinger{client: client} }

func (p pinger) Ping(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// CountCache serves Count from Redis and delegates everything else to the
// wrapped store. Any Redis failure falls back to the store.
type CountCache[T any] struct {
	store  paginate.Store[T]
	client redis.Cmdable
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
}

func NewCountCache[T any](store paginate.Store[T], client redis.Cmdable, prefix string, ttl time.Duration, logger zerolog.Logger) *CountCache[T] {
	l := logger.With().Str("module", "cache").Str("component", prefix).Logger()
	return &CountCache[T]{store: store, client: client, prefix: prefix, ttl: ttl, log: l, now: time.Now}
}

// Key derives the cache key for w. Equal filters give equal keys.
func Key(prefix string, w paginate.Where) (string, error) {
	raw, err := json.Marshal(w)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return "count:" + prefix + ":" + hex.EncodeToString(sum[:]), nil
}

func (c *CountCache[T]) Count(ctx context.Context, where paginate.Where) (int, error) {
	// open-ended date ranges end at request time, so their keys never repeat
	if boundsRecentTime(where, c.now(), c.window()) {
		return c.store.Count(ctx, where)
	}
	key, err := Key(c.prefix, where)
	if err != nil {
		c.log.Warn().Err(err).Msg("count key not derivable; bypassing cache")
		return c.store.Count(ctx, where)
	}

	n, err := c.client.Get(ctx, key).Int()
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn().Err(err).Str("key", key).Msg("count cache read failed")
	}

	n, err = c.store.Count(ctx, where)
	if err != nil {
		return 0, err
	}
	if err := c.client.Set(ctx, key, n, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("count cache write failed")
	}
	return n, nil
}

func (c *CountCache[T]) FindMany(ctx context.Context, criteria paginate.Criteria) ([]T, error) {
	return c.store.FindMany(ctx, criteria)
}

func (c *CountCache[T]) window() time.Duration {
	if c.ttl < time.Minute {
		return time.Minute
	}
	return c.ttl
}

// boundsRecentTime reports whether any time value in w is later than
// now-window.
func boundsRecentTime(w paginate.Where, now time.Time, window time.Duration) bool {
	since := now.Add(-window)
	for _, cond := range w.Conds {
		if condIsRecent(cond, since) {
			return true
		}
	}
	for _, e := range w.Or {
		if exprIsRecent(e, since) {
			return true
		}
	}
	return false
}

func exprIsRecent(e paginate.Expr, since time.Time) bool {
	switch v := e.(type) {
	case paginate.Cond:
		return condIsRecent(v, since)
	case paginate.Group:
		for _, sub := range v.Exprs {
			if exprIsRecent(sub, since) {
				return true
			}
		}
	}
	return false
}

func condIsRecent(cond paginate.Cond, since time.Time) bool {
	switch v := cond.Value.(type) {
	case time.Time:
		return v.After(since)
	case []any:
		for _, item := range v {
			if t, ok := item.(time.Time); ok && t.After(since) {
				return true
			}
		}
	}
	return false
}

// Invalidate drops every total cached under the prefix.
func (c *CountCache[T]) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, "count:"+c.prefix+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("count cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int("keys", len(keys)).Msg("count cache invalidation failed")
	}
}

var _ paginate.Store[struct{}] = (*CountCache[struct{}])(nil)
