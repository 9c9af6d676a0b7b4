package oracle

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy bounds repeated oracle calls: capped attempts, randomized
// exponential backoff and a per-attempt timeout so one hung call cannot
// exhaust the whole budget.
type RetryPolicy struct {
	MaxAttempts    int
	MinBackoff     time.Duration
	MaxBackoff     time.Duration
	AttemptTimeout time.Duration
	// Retryable decides whether an attempt error is transient. When nil,
	// DefaultRetryable is used.
	Retryable func(error) bool
}

// DefaultRetryPolicy mirrors the production grading policy: three attempts
// with 1–30s randomized exponential backoff and a 60s cap per attempt.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		MinBackoff:     time.Second,
		MaxBackoff:     30 * time.Second,
		AttemptTimeout: 60 * time.Second,
	}
}

// DefaultRetryable retries everything except content-policy blocks; those
// are deterministic oracle decisions, not transient faults.
func DefaultRetryable(err error) bool {
	var blocked *ContentBlockedError
	return !errors.As(err, &blocked)
}

// Do runs fn under the policy and returns the first successful result or the
// last attempt's error. Caller-side cancellation always wins: no further
// attempts are made once ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := p.sleep(ctx, attempt); err != nil {
				return "", err
			}
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if p.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, p.AttemptTimeout)
		}

		result, err := fn(attemptCtx)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !retryable(err) {
			return "", err
		}
	}

	return "", lastErr
}

// sleep waits for a randomized exponential backoff, bailing out early when
// the caller cancels.
func (p RetryPolicy) sleep(ctx context.Context, attempt int) error {
	min := p.MinBackoff
	if min <= 0 {
		min = time.Second
	}
	max := p.MaxBackoff
	if max < min {
		max = min
	}

	backoff := min << (attempt - 1)
	if backoff > max || backoff <= 0 {
		backoff = max
	}
	wait := min + time.Duration(rand.Int63n(int64(backoff-min)+1))

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
