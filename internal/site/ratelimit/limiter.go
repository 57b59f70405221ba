// Package ratelimit provides a fixed-window attempt counter for the admin
// code verifier. It is keyed per client IP and counts attempts, successful
// or not, within the window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLimited is returned when the caller has exhausted the window.
	ErrLimited = errors.New("ratelimit: too many attempts")

	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("ratelimit: backend unavailable")
)

// Limiter counts attempts per key in a fixed window. Allow returns
// ErrLimited with a retry-after hint once the window budget is spent.
type Limiter interface {
	// Allow records one attempt for key. It reports the attempts left in
	// the window and, when the attempt is rejected, the time until the
	// window resets.
	Allow(ctx context.Context, key string) (remaining int, retryAfter time.Duration, err error)
}

// RedisLimiter is a fixed-window limiter shared across instances. The first
// INCR of a window sets the expiry; the key's remaining TTL is the
// retry-after hint.
type RedisLimiter struct {
	rdb      *redis.Client
	prefix   string
	attempts int64
	window   time.Duration
}

func NewRedisLimiter(rdb *redis.Client, prefix string, attempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		rdb:      rdb,
		prefix:   prefix,
		attempts: int64(attempts),
		window:   window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (int, time.Duration, error) {
	k := l.prefix + ":" + key

	count, err := l.rdb.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, k, l.window).Err(); err != nil {
			return 0, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count > l.attempts {
		ttl, err := l.rdb.TTL(ctx, k).Result()
		if err != nil || ttl < 0 {
			ttl = l.window
		}
		return 0, ttl, ErrLimited
	}

	return int(l.attempts - count), 0, nil
}

// MemoryLimiter is a single-process fallback used when no Redis address is
// configured. Windows are pruned lazily on access.
type MemoryLimiter struct {
	mu       sync.Mutex
	windows  map[string]*memWindow
	attempts int
	window   time.Duration
}

type memWindow struct {
	count   int
	resetAt time.Time
}

func NewMemoryLimiter(attempts int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		windows:  make(map[string]*memWindow),
		attempts: attempts,
		window:   window,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (int, time.Duration, error) {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &memWindow{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}

	w.count++
	if w.count > l.attempts {
		return 0, time.Until(w.resetAt), ErrLimited
	}

	// Opportunistic prune so abandoned keys don't accumulate.
	if len(l.windows) > 4096 {
		for k, win := range l.windows {
			if now.After(win.resetAt) {
				delete(l.windows, k)
			}
		}
	}

	return l.attempts - w.count, 0, nil
}
