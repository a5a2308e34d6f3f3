package pumproom

import (
	"context"
	"time"
)

// backoffDelay returns the delay before retry attempt n (1-based), growing
// exponentially from InitialInterval and capped at MaxInterval.
func backoffDelay(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.InitialInterval
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay >= cfg.MaxInterval {
			return cfg.MaxInterval
		}
	}
	if delay > cfg.MaxInterval {
		return cfg.MaxInterval
	}
	return delay
}

// retryDo runs fn up to 1+MaxRetries times, sleeping with exponential backoff
// between attempts. Only retryable errors trigger another attempt; context
// cancellation wins over both.
func retryDo(ctx context.Context, cfg RetryConfig, obs Observer, method, path string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffDelay(cfg, attempt)
			obs.OnRetryAttempt(method, path, attempt, delay, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}
