// Package retry holds the single retry policy shared by all store-mutating
// operations: bounded attempts, exponential backoff and a retryable-error
// predicate. Not-found and conflict errors must never be retried; only the
// caller knows which errors are transient, so the predicate is injected.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultMaxAttempts     = 3
	defaultInitialInterval = 100 * time.Millisecond
)

type Policy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	// Retryable reports whether an error is transient. A nil predicate
	// retries every error.
	Retryable func(error) bool
}

func DefaultPolicy(retryable func(error) bool) Policy {
	return Policy{
		MaxAttempts:     defaultMaxAttempts,
		InitialInterval: defaultInitialInterval,
		Retryable:       retryable,
	}
}

// Do runs op, retrying transient failures with exponential backoff (the
// interval doubles between attempts). It returns the last error once the
// attempt budget is exhausted, or immediately on a non-retryable error.
func (p Policy) Do(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	attempts := uint64(p.MaxAttempts)
	if attempts == 0 {
		attempts = 1
	}

	wrapped := func() error {
		err := op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx))
}
