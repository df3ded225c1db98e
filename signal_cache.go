package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"lg/hayl-fuel-api/nutrition"
)

// signalCache is a read-through cache in front of the adaptive_signals table.
// A miss is (zero, false, nil); errors are reserved for transport failures.
type signalCache interface {
	Get(ctx context.Context, userID int) (nutrition.AdaptiveSignal, bool, error)
	Set(ctx context.Context, userID int, s nutrition.AdaptiveSignal) error
	Delete(ctx context.Context, userID int) error
}

func signalCacheKey(userID int) string {
	return fmt.Sprintf("adaptive_signal:%d", userID)
}

// redisSignalCache stores each user's signal as JSON under adaptive_signal:<id>.
type redisSignalCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// newRedisSignalCache connects and pings Redis.
func newRedisSignalCache(addr string, ttl time.Duration) (*redisSignalCache, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisSignalCache{rdb: rdb, ttl: ttl}, nil
}

func (r *redisSignalCache) Get(ctx context.Context, userID int) (nutrition.AdaptiveSignal, bool, error) {
	raw, err := r.rdb.Get(ctx, signalCacheKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nutrition.AdaptiveSignal{}, false, nil
	}
	if err != nil {
		return nutrition.AdaptiveSignal{}, false, fmt.Errorf("redis get: %w", err)
	}
	var s nutrition.AdaptiveSignal
	if err := json.Unmarshal(raw, &s); err != nil {
		// A stale or corrupt entry is treated as a miss and overwritten later.
		return nutrition.AdaptiveSignal{}, false, nil
	}
	return s, true, nil
}

func (r *redisSignalCache) Set(ctx context.Context, userID int, s nutrition.AdaptiveSignal) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode signal: %w", err)
	}
	if err := r.rdb.Set(ctx, signalCacheKey(userID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *redisSignalCache) Delete(ctx context.Context, userID int) error {
	if err := r.rdb.Del(ctx, signalCacheKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *redisSignalCache) Close() error {
	return r.rdb.Close()
}

// noopSignalCache is used when REDIS_ADDR is unset. Every read misses.
type noopSignalCache struct{}

func (noopSignalCache) Get(context.Context, int) (nutrition.AdaptiveSignal, bool, error) {
	return nutrition.AdaptiveSignal{}, false, nil
}
func (noopSignalCache) Set(context.Context, int, nutrition.AdaptiveSignal) error { return nil }
func (noopSignalCache) Delete(context.Context, int) error { return nil }
