package github

import (
	"context"
	"errors"
	"time"

	"github.com/bobmcallan/hubgate/internal/gateway"
)

// RetryPolicy bounds how many times a rate-limited or timed-out upstream
// call is reattempted, with exponential backoff between attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewRetryPolicy builds a policy allowing maxRetries additional attempts
// after the first call. maxRetries <= 0 disables retry.
func NewRetryPolicy(maxRetries int) RetryPolicy {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return RetryPolicy{
		MaxAttempts: maxRetries + 1,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    10 * time.Second,
	}
}

// Do runs fn until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. The attempt number passed to fn is 1-based.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) || attempt == p.MaxAttempts {
			return lastErr
		}

		delay := p.backoff(attempt, lastErr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return lastErr
}

// backoff doubles the base delay per attempt, capped at MaxDelay. An
// upstream Retry-After hint overrides the computed delay.
func (p RetryPolicy) backoff(attempt int, err error) time.Duration {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) && gwErr.RetryAfter > 0 {
		hinted := time.Duration(gwErr.RetryAfter) * time.Second
		if hinted < p.MaxDelay {
			return hinted
		}
		return p.MaxDelay
	}

	delay := p.BaseDelay << (attempt - 1)
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	return delay
}

// isRetryable reports whether an error is transient enough to reattempt.
func isRetryable(err error) bool {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return gwErr.Retryable()
	}
	return false
}
