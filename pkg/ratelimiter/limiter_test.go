package ratelimiter_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/hrpayroll/pkg/ratelimiter"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := ratelimiter.New(nil, ratelimiter.Config{Limit: 1, Window: time.Second})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	_, err = ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Window: time.Second})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)

	_, err = ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{Limit: 1})
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestMemoryStoreWindow(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(c.now))
	l, err := ratelimiter.New(store, ratelimiter.Config{Limit: 2, Window: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	for i := range 2 {
		res, err := l.Allow(ctx, "ip")
		require.NoError(t, err)
		assert.True(t, res.Allowed(), "attempt %d", i)
		assert.Zero(t, res.RetryAfter())
	}

	res, err := l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, -1, res.Remaining)
	assert.Equal(t, c.t.Add(time.Minute), res.ResetAt)

	other, err := l.Allow(ctx, "other")
	require.NoError(t, err)
	assert.True(t, other.Allowed())

	c.advance(time.Minute)
	res, err = l.Allow(ctx, "ip")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 1, res.Remaining)
}

func TestMemoryStoreResetAndSweep(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(c.now))
	l, err := ratelimiter.New(store, ratelimiter.Config{Limit: 1, Window: time.Second})
	require.NoError(t, err)
	ctx := context.Background()

	_, _ = l.Allow(ctx, "a")
	res, _ := l.Allow(ctx, "a")
	assert.False(t, res.Allowed())

	require.NoError(t, l.Reset(ctx, "a"))
	res, _ = l.Allow(ctx, "a")
	assert.True(t, res.Allowed())

	_, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, store.Len())

	c.advance(2 * time.Minute)
	_, _ = l.Allow(ctx, "c")
	assert.Equal(t, 1, store.Len())
}

func TestRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	res := ratelimiter.Result{Limit: 1, Remaining: -1, ResetAt: time.Now().Add(1500 * time.Millisecond)}
	assert.Equal(t, 2, res.RetryAfterSeconds())

	res.Remaining = 0
	assert.Equal(t, 0, res.RetryAfterSeconds())
}

func TestRedisStore(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	l, err := ratelimiter.New(ratelimiter.NewRedisStore(client, "hrpayroll"), ratelimiter.Config{Limit: 2, Window: time.Minute})
	require.NoError(t, err)
	ctx := context.Background()

	for range 2 {
		res, err := l.Allow(ctx, "login:10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
	}
	res, err := l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Greater(t, res.RetryAfter(), 50*time.Second)

	assert.True(t, mr.Exists("hrpayroll:login:10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL("hrpayroll:login:10.0.0.1"))

	mr.FastForward(time.Minute)
	res, err = l.Allow(ctx, "login:10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	require.NoError(t, l.Reset(ctx, "login:10.0.0.1"))
	assert.False(t, mr.Exists("hrpayroll:login:10.0.0.1"))
}

func TestRedisStoreUnavailable(t *testing.T) {
	t.Parallel()

	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	l, err := ratelimiter.New(ratelimiter.NewRedisStore(client, ""), ratelimiter.Config{Limit: 1, Window: time.Second})
	require.NoError(t, err)

	_, err = l.Allow(context.Background(), "k")
	assert.ErrorIs(t, err, ratelimiter.ErrStore)
	assert.False(t, errors.Is(err, ratelimiter.ErrInvalidConfig))
}
