// Package cache is a small JSON-over-Redis cache. Entries are stamped with
// a generation counter; bumping the counter invalidates them even when a
// slow reader writes an old value back after the bump.
//
// A nil *Store is valid and behaves as a cache that always misses, so
// callers never branch on whether Redis is configured.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shashiranjanraj/inventory/pkg/logger"
	"github.com/shashiranjanraj/inventory/pkg/metrics"
)

// Store wraps a Redis client.
type Store struct {
	rdb *redis.Client
}

// Connect dials Redis and verifies it with a ping. An empty addr disables
// caching and returns a nil Store without error.
func Connect(ctx context.Context, addr, password string, db int) (*Store, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

// entry is a cached value stamped with the generation it was read under.
type entry struct {
	Generation int64           `json:"generation"`
	Value      json.RawMessage `json:"value"`
}

// Generation returns the current value of the counter at genKey, zero
// when it was never bumped. ok is false when Redis cannot be read, in
// which case the caller should not cache anything.
func (s *Store) Generation(ctx context.Context, genKey string) (gen int64, ok bool) {
	if s == nil {
		return 0, false
	}
	gen, err := s.rdb.Get(ctx, genKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		logger.WithCtx(ctx).Warn("cache: generation read failed", "key", genKey, "error", err)
		return 0, false
	}
	return gen, true
}

// Bump advances the counter at genKey, making every entry stored under an
// earlier generation stale.
func (s *Store) Bump(ctx context.Context, genKey string) error {
	if s == nil {
		return nil
	}
	return s.rdb.Incr(ctx, genKey).Err()
}

// Get unmarshals the value at key into dest and reports a hit. The entry
// and the counter at genKey are read in one MGET; an entry written under
// another generation is a miss. Errors count as misses.
func (s *Store) Get(ctx context.Context, key, genKey string, dest any) bool {
	if s == nil {
		return false
	}

	vals, err := s.rdb.MGet(ctx, key, genKey).Result()
	if err != nil {
		logger.WithCtx(ctx).Warn("cache: get failed", "key", key, "error", err)
		return s.miss(key)
	}

	raw, ok := vals[0].(string)
	if !ok {
		return s.miss(key)
	}
	var gen int64
	if g, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(g, 10, 64); err != nil {
			return s.miss(key)
		}
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil || e.Generation != gen {
		return s.miss(key)
	}
	if err := json.Unmarshal(e.Value, dest); err != nil {
		return s.miss(key)
	}

	metrics.CacheHits.WithLabelValues(key).Inc()
	return true
}

func (s *Store) miss(key string) bool {
	metrics.CacheMisses.WithLabelValues(key).Inc()
	return false
}

// Set stores value under key for ttl, stamped with gen. gen must be read
// with Generation before the value itself is loaded.
func (s *Store) Set(ctx context.Context, key string, gen int64, value any, ttl time.Duration) error {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err = json.Marshal(entry{Generation: gen, Value: data})
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, data, ttl).Err()
}

// Forget removes keys.
func (s *Store) Forget(ctx context.Context, keys ...string) error {
	if s == nil || len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// Close releases the client.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.rdb.Close()
}
