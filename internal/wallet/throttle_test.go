package wallet

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryThrottleCooldown(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	throttle := &memoryThrottle{
		cooldown: 5 * time.Minute,
		attempts: make(map[string]time.Time),
		now:      func() time.Time { return now },
	}
	ctx := context.Background()

	if !throttle.Permits(ctx, "u1") {
		t.Fatal("expected creation allowed with no recorded attempt")
	}

	throttle.Record(ctx, "u1")
	if throttle.Permits(ctx, "u1") {
		t.Fatal("expected denial inside cooldown window")
	}

	now = now.Add(4 * time.Minute)
	if throttle.Permits(ctx, "u1") {
		t.Fatal("expected denial at 4 minutes")
	}

	now = now.Add(time.Minute)
	if !throttle.Permits(ctx, "u1") {
		t.Fatal("expected permission after cooldown elapsed")
	}
}

func TestMemoryThrottleIsPerUser(t *testing.T) {
	throttle := NewMemoryThrottle(5 * time.Minute)
	ctx := context.Background()

	throttle.Record(ctx, "u1")
	if !throttle.Permits(ctx, "u2") {
		t.Fatal("cooldown for u1 must not affect u2")
	}
}

func TestRedisThrottle(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	throttle := NewRedisThrottle(cache, 5*time.Minute)
	ctx := context.Background()

	if !throttle.Permits(ctx, "u1") {
		t.Fatal("expected creation allowed with no recorded attempt")
	}

	throttle.Record(ctx, "u1")
	if throttle.Permits(ctx, "u1") {
		t.Fatal("expected denial inside cooldown window")
	}
	if !throttle.Permits(ctx, "u2") {
		t.Fatal("cooldown for u1 must not affect u2")
	}

	mr.FastForward(5 * time.Minute)
	if !throttle.Permits(ctx, "u1") {
		t.Fatal("expected permission after cooldown key expired")
	}
}

func TestRedisThrottleFailsOpen(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	throttle := NewRedisThrottle(cache, 5*time.Minute)
	ctx := context.Background()
	throttle.Record(ctx, "u1")

	mr.Close() // unreachable cache must not block creation

	if !throttle.Permits(ctx, "u1") {
		t.Fatal("expected fail-open when redis is unreachable")
	}
}
