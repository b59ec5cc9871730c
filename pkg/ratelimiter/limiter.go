package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Config bounds attempts per key: at most Limit within each Window.
type Config struct {
	Limit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"5"`
	Window time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"1m"`
}

func (c Config) validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfig, c.Limit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("%w: window must be positive, got %v", ErrInvalidConfig, c.Window)
	}
	return nil
}

// Store counts attempts.
type Store interface {
	// Hit records one attempt for key and returns the attempts made in the
	// current window together with the window's end.
	Hit(ctx context.Context, key string, window time.Duration) (count int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// Result is the outcome of one attempt.
type Result struct {
	Limit     int
	Remaining int // negative once the limit is exceeded
	ResetAt   time.Time
}

func (r Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is the time until the window resets, zero when allowed.
func (r Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds for the
// Retry-After header.
func (r Result) RetryAfterSeconds() int {
	return int(math.Ceil(r.RetryAfter().Seconds()))
}

type Limiter struct {
	store Store
	cfg   Config
}

func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrInvalidConfig)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Allow records an attempt for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, resetAt, err := l.store.Hit(ctx, key, l.cfg.Window)
	if err != nil {
		return Result{}, errors.Join(ErrStore, err)
	}
	return Result{
		Limit:     l.cfg.Limit,
		Remaining: l.cfg.Limit - count,
		ResetAt:   resetAt,
	}, nil
}

// Reset forgets the attempts of key, e.g. after a successful sign-in.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if err := l.store.Reset(ctx, key); err != nil {
		return errors.Join(ErrStore, err)
	}
	return nil
}
