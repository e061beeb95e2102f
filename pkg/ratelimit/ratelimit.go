package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Operation is the throttled action type. Send and verify carry separate
// budgets per source address.
type Operation string

const (
	OpSendCode   Operation = "send"
	OpVerifyCode Operation = "verify"
)

// Result of a rate limit check.
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Store counts attempts per key within a fixed window. Implementations must
// create the counter with the window TTL on first increment.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (count int, remaining time.Duration, err error)
}

// Limiter throttles OTP operations per source address. Counters live in the
// injected store, so limits survive restarts when backed by Redis.
type Limiter struct {
	store  Store
	window time.Duration
	limits map[Operation]int
}

func NewLimiter(store Store, window time.Duration, sendLimit, verifyLimit int) *Limiter {
	return &Limiter{
		store:  store,
		window: window,
		limits: map[Operation]int{
			OpSendCode:   sendLimit,
			OpVerifyCode: verifyLimit,
		},
	}
}

func (l *Limiter) Allow(ctx context.Context, addr string, op Operation) (Result, error) {
	max, ok := l.limits[op]
	if !ok {
		return Result{}, fmt.Errorf("unknown rate limit operation: %s", op)
	}

	key := fmt.Sprintf("%s:%s", op, addr)
	count, remaining, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return Result{}, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count > max {
		return Result{Allowed: false, RetryAfter: remaining}, nil
	}
	return Result{Allowed: true}, nil
}

type memoryEntry struct {
	count   int
	resetAt time.Time
}

// MemoryStore is the default in-process counter store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	nowFn   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		nowFn:   time.Now,
	}
}

func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	s.cleanup(now)

	entry, ok := s.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &memoryEntry{count: 0, resetAt: now.Add(window)}
		s.entries[key] = entry
	}
	entry.count++
	return entry.count, entry.resetAt.Sub(now), nil
}

func (s *MemoryStore) cleanup(now time.Time) {
	for key, entry := range s.entries {
		if now.After(entry.resetAt) {
			delete(s.entries, key)
		}
	}
}

// RedisStore backs the counters with Redis so multiple instances share
// budgets.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	fullKey := s.prefix + key

	count, err := s.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis expire: %w", err)
		}
		return int(count), window, nil
	}

	remaining, err := s.client.TTL(ctx, fullKey).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis ttl: %w", err)
	}
	return int(count), remaining, nil
}
