package api

import (
	"context"
	"time"
)

// Backoff retries transient failures with exponentially growing delays:
// base<<0, base<<1, ... up to Retries extra attempts. Non-transient
// failures return immediately.
type Backoff struct {
	Base    time.Duration
	Retries int
}

// ListBackoff is the bulk feature-list policy: 1s and 2s delays, two retries.
func ListBackoff() Backoff {
	return Backoff{Base: time.Second, Retries: 2}
}

// Do runs fn until it succeeds, fails non-transiently, retries are
// exhausted, or the context is done.
func (b Backoff) Do(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) || attempt >= b.Retries {
			return err
		}
		delay := b.Base << attempt
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// FixedRetry retries a transient failure exactly once after a fixed delay.
// Used for per-feature analysis requests so a slow row never loops.
type FixedRetry struct {
	Delay time.Duration
}

// DetailRetry is the per-feature analysis policy.
func DetailRetry() FixedRetry {
	return FixedRetry{Delay: time.Second}
}

// Do runs fn, retrying once when the first failure is transient.
func (r FixedRetry) Do(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || !IsTransient(err) {
		return err
	}
	timer := time.NewTimer(r.Delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return err
	case <-timer.C:
	}
	return fn(ctx)
}
