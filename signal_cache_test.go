package main

import (
	"context"
	"math/rand/v2"
	"os"
	"testing"
	"time"

	"lg/hayl-fuel-api/nutrition"
)

// redisTestCache connects to the Redis named by REDIS_TEST_ADDR and returns a
// cache plus a user id no other run will collide with.
func redisTestCache(t *testing.T, ttl time.Duration) (*redisSignalCache, int) {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("set REDIS_TEST_ADDR (e.g. localhost:6379) to run Redis integration tests")
	}
	rc, err := newRedisSignalCache(addr, ttl)
	if err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	userID := 1_000_000 + rand.IntN(1_000_000)
	t.Cleanup(func() {
		_ = rc.rdb.Del(context.Background(), signalCacheKey(userID)).Err()
		_ = rc.Close()
	})
	return rc, userID
}

func TestRedisSignalCache_RoundTrip(t *testing.T) {
	rc, userID := redisTestCache(t, time.Minute)
	ctx := context.Background()

	if _, hit, err := rc.Get(ctx, userID); hit || err != nil {
		t.Fatalf("empty key = (hit %v, err %v), want a clean miss", hit, err)
	}

	want := nutrition.AdaptiveSignal{
		Consistency7d:  57,
		Classification: nutrition.Stable,
		Confidence:     61,
		Summary:        "Weight steady (0.05 kg/week).",
		ComputedAt:     fixedNow,
	}
	if err := rc.Set(ctx, userID, want); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, hit, err := rc.Get(ctx, userID)
	if err != nil || !hit {
		t.Fatalf("get after set = (hit %v, err %v)", hit, err)
	}
	if got.Classification != want.Classification || got.Confidence != want.Confidence ||
		got.Consistency7d != want.Consistency7d || !got.ComputedAt.Equal(want.ComputedAt) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	ttl, err := rc.rdb.TTL(ctx, signalCacheKey(userID)).Result()
	if err != nil {
		t.Fatalf("ttl: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within (0, 1m]", ttl)
	}

	if err := rc.Delete(ctx, userID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, hit, _ := rc.Get(ctx, userID); hit {
		t.Error("expected a miss after delete")
	}
}

// TestRedisSignalCache_CorruptEntryIsMiss verifies an undecodable value reads
// as a miss rather than an error.
func TestRedisSignalCache_CorruptEntryIsMiss(t *testing.T) {
	rc, userID := redisTestCache(t, time.Minute)
	ctx := context.Background()

	if err := rc.rdb.Set(ctx, signalCacheKey(userID), "{not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt value: %v", err)
	}
	if _, hit, err := rc.Get(ctx, userID); hit || err != nil {
		t.Errorf("corrupt entry = (hit %v, err %v), want a clean miss", hit, err)
	}
}
