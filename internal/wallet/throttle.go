package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Throttle limits how often wallet creation may be attempted for a user. It
// is best-effort duplicate-provisioning protection; the persistence layer's
// upsert guarantee is the correctness backstop.
type Throttle interface {
	// Permits reports whether a creation attempt is currently allowed.
	Permits(ctx context.Context, userID string) bool
	// Record marks a creation attempt, starting the cooldown window.
	Record(ctx context.Context, userID string)
}

type memoryThrottle struct {
	mu       sync.Mutex
	cooldown time.Duration
	attempts map[string]time.Time
	now      func() time.Time
}

// NewMemoryThrottle builds a process-local cooldown tracker. Absence of a
// recorded attempt means creation is unconditionally allowed.
func NewMemoryThrottle(cooldown time.Duration) Throttle {
	return &memoryThrottle{
		cooldown: cooldown,
		attempts: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (t *memoryThrottle) Permits(_ context.Context, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	last, ok := t.attempts[userID]
	if !ok {
		return true
	}
	if t.now().Sub(last) >= t.cooldown {
		delete(t.attempts, userID)
		return true
	}
	return false
}

func (t *memoryThrottle) Record(_ context.Context, userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attempts[userID] = t.now()
}

const redisCooldownPrefix = "wallet:cooldown:"

type redisThrottle struct {
	cache    *redis.Client
	cooldown time.Duration
}

// NewRedisThrottle builds a cooldown tracker shared across replicas. Redis
// errors fail open: an unreachable cache must not block wallet creation.
func NewRedisThrottle(cache *redis.Client, cooldown time.Duration) Throttle {
	return &redisThrottle{cache: cache, cooldown: cooldown}
}

func (t *redisThrottle) Permits(ctx context.Context, userID string) bool {
	n, err := t.cache.Exists(ctx, redisCooldownPrefix+userID).Result()
	if err != nil {
		return true // fail-open on cache errors
	}
	return n == 0
}

func (t *redisThrottle) Record(ctx context.Context, userID string) {
	t.cache.Set(ctx, redisCooldownPrefix+userID, time.Now().UTC().Format(time.RFC3339Nano), t.cooldown)
}
