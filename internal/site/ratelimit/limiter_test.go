package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisLimiter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisLimiter(rdb, "verify", 5, 15*time.Minute)

	t.Run("allows up to the budget then rejects", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			remaining, _, err := l.Allow(ctx, "1.2.3.4")
			require.NoError(t, err)
			require.Equal(t, 5-(i+1), remaining)
		}

		_, retryAfter, err := l.Allow(ctx, "1.2.3.4")
		require.ErrorIs(t, err, ErrLimited)
		require.Greater(t, retryAfter, time.Duration(0))
		require.LessOrEqual(t, retryAfter, 15*time.Minute)
	})

	t.Run("keys are independent", func(t *testing.T) {
		remaining, _, err := l.Allow(ctx, "5.6.7.8")
		require.NoError(t, err)
		require.Equal(t, 4, remaining)
	})

	t.Run("window expiry resets the budget", func(t *testing.T) {
		mr.FastForward(15*time.Minute + time.Second)
		remaining, _, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.Equal(t, 4, remaining)
	})

	t.Run("backend loss surfaces ErrUnavailable", func(t *testing.T) {
		mr.Close()
		_, _, err := l.Allow(ctx, "1.2.3.4")
		require.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestMemoryLimiter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	l := NewMemoryLimiter(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		remaining, _, err := l.Allow(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, 3-(i+1), remaining)
	}

	_, retryAfter, err := l.Allow(ctx, "a")
	require.ErrorIs(t, err, ErrLimited)
	require.Greater(t, retryAfter, time.Duration(0))

	// Other keys keep their own budget.
	_, _, err = l.Allow(ctx, "b")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	_, _, err = l.Allow(ctx, "a")
	require.NoError(t, err)
}
