// Package cache keeps search results in Redis, keyed by session and the
// tokenized query, and collapses concurrent identical misses with
// singleflight. Redis failures degrade to a miss; a circuit breaker stops
// calling Redis while it is failing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/internal/search"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/metrics"
	pkgredis "github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/redis"
	"github.com/cohensh96/Rank-Rangers--Information-Retrieval/pkg/resilience"
)

const keyPrefix = "tfidf:"

// Store is the byte store behind the cache; *pkgredis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// QueryCache caches *search.Result values.
type QueryCache struct {
	store   Store
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a QueryCache. m may be nil.
func New(store Store, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		store: store,
		ttl:   ttl,
		breaker: resilience.NewCircuitBreaker("redis-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     30 * time.Second,
		}),
		metrics: m,
		logger:  slog.Default().With("component", "query-cache"),
	}
}

// Key derives the cache key from the session and the query's terms, so
// queries that tokenize alike share an entry.
func Key(sessionID string, terms []string) string {
	hash := sha256.Sum256([]byte(strings.Join(terms, "\x00")))
	return fmt.Sprintf("%s%s:%x", keyPrefix, sessionID, hash[:16])
}

func (c *QueryCache) get(ctx context.Context, key string) (*search.Result, bool) {
	if !c.breaker.Allow() {
		return nil, false
	}
	data, err := c.store.Get(ctx, key)
	if errors.Is(err, pkgredis.ErrMiss) {
		c.breaker.Record(nil)
		return nil, false
	}
	c.breaker.Record(err)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	var result search.Result
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (c *QueryCache) set(ctx context.Context, key string, result *search.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if !c.breaker.Allow() {
		return
	}
	err = c.store.Set(ctx, key, data, c.ttl)
	c.breaker.Record(err)
	if err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for key, or runs compute once for
// all concurrent callers with the same key and caches its result. The bool
// reports a cache hit.
func (c *QueryCache) GetOrCompute(ctx context.Context, key string, compute func() (*search.Result, error)) (*search.Result, bool, error) {
	if result, ok := c.get(ctx, key); ok {
		c.recordHit(true)
		return result, true, nil
	}
	c.recordHit(false)
	val, err, _ := c.group.Do(key, func() (any, error) {
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*search.Result), false, nil
}

func (c *QueryCache) recordHit(hit bool) {
	if hit {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.metrics == nil {
		return
	}
	if hit {
		c.metrics.CacheHitsTotal.Inc()
	} else {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// Invalidate drops every cached result.
func (c *QueryCache) Invalidate(ctx context.Context) error {
	deleted, err := c.store.DeletePrefix(ctx, keyPrefix)
	if err != nil {
		return fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since start-up.
func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BreakerState reports whether Redis calls are currently short-circuited.
func (c *QueryCache) BreakerState() string {
	return c.breaker.GetState().String()
}
