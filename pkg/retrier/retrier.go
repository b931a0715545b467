// Package retrier implements the fixed-delay retry policy shared by all
// upstream calls: a bounded number of attempts with a constant pause
// between them. Exchanges rate-limit aggressively, so no backoff growth
// is applied; the caller picks the budget.
package retrier

import (
	"context"
	"time"
)

const (
	defaultAttempts = 3
	defaultDelay    = 5 * time.Second
)

// Retrier runs a function up to a fixed number of attempts.
type Retrier struct {
	attempts int
	delay    time.Duration
}

// Option configures a Retrier.
type Option func(*Retrier)

// WithAttempts sets the total attempt budget (including the first try).
func WithAttempts(n int) Option {
	return func(r *Retrier) {
		if n > 0 {
			r.attempts = n
		}
	}
}

// WithDelay sets the pause between consecutive attempts.
func WithDelay(d time.Duration) Option {
	return func(r *Retrier) {
		if d >= 0 {
			r.delay = d
		}
	}
}

// New creates a Retrier with the default budget and optional overrides.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		attempts: defaultAttempts,
		delay:    defaultDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attempts returns the configured attempt budget.
func (r *Retrier) Attempts() int {
	return r.attempts
}

// Do executes fn until it succeeds or the budget is exhausted, sleeping
// the configured delay between attempts. Returns the last error when
// every attempt fails. Context cancellation interrupts the inter-attempt
// wait and is returned as-is.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay):
			}
		}

		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}

// DoWithData is Do for functions that return a value.
func DoWithData[T any](r *Retrier, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := r.Do(ctx, func(ctx context.Context) error {
		var e error
		result, e = fn(ctx)
		return e
	})
	return result, err
}
