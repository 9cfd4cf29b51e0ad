// Package retry runs optimistic writes under a bounded retry policy.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrAttemptsExhausted wraps the last error once a policy gives up.
var ErrAttemptsExhausted = errors.New("retry attempts exhausted")

// Policy describes how an operation is retried.
type Policy struct {
	MaxAttempts int
	MinBackoff  time.Duration
	MaxBackoff  time.Duration
	// Retryable decides whether err warrants another attempt. Nil means never retry.
	Retryable func(err error) bool
	// OnRetry is called before sleeping between attempts.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy
// runs out of attempts. In the last case the returned error wraps both
// ErrAttemptsExhausted and the final error from fn.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		wait := p.backoff()
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempts, lastErr)
}

// backoff picks a uniformly random wait in [MinBackoff, MaxBackoff].
func (p Policy) backoff() time.Duration {
	if p.MaxBackoff <= p.MinBackoff {
		return p.MinBackoff
	}
	spread := int64(p.MaxBackoff - p.MinBackoff)
	return p.MinBackoff + time.Duration(rand.Int63n(spread+1))
}
