package pumproom

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:      3,
		InitialInterval: time.Millisecond,
		MaxInterval:     4 * time.Millisecond,
		Multiplier:      2.0,
	}
}

func TestBackoffDelay(t *testing.T) {
	cfg := RetryConfig{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2.0,
	}

	assert.Equal(t, 100*time.Millisecond, backoffDelay(cfg, 1))
	assert.Equal(t, 200*time.Millisecond, backoffDelay(cfg, 2))
	assert.Equal(t, 400*time.Millisecond, backoffDelay(cfg, 3))
	assert.Equal(t, 2*time.Second, backoffDelay(cfg, 10), "delay is capped")
}

func TestRetryDo(t *testing.T) {
	t.Run("stops on success", func(t *testing.T) {
		calls := 0
		err := retryDo(context.Background(), testRetryConfig(), &NoopObserver{}, "POST", "/x", func() error {
			calls++
			if calls < 2 {
				return &APIError{StatusCode: 500}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("does not retry non-retryable errors", func(t *testing.T) {
		calls := 0
		fatal := errors.New("fatal")
		err := retryDo(context.Background(), testRetryConfig(), &NoopObserver{}, "POST", "/x", func() error {
			calls++
			return fatal
		})
		assert.ErrorIs(t, err, fatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		calls := 0
		err := retryDo(context.Background(), testRetryConfig(), &NoopObserver{}, "POST", "/x", func() error {
			calls++
			return &APIError{StatusCode: 503}
		})
		require.Error(t, err)
		assert.Equal(t, 4, calls, "one initial attempt plus three retries")
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		calls := 0
		err := retryDo(ctx, testRetryConfig(), &NoopObserver{}, "POST", "/x", func() error {
			calls++
			return &APIError{StatusCode: 503}
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("notifies the observer per retry", func(t *testing.T) {
		metrics := NewMetricsCollector()
		_ = retryDo(context.Background(), testRetryConfig(), metrics, "POST", "/x", func() error {
			return &APIError{StatusCode: 503}
		})
		snapshot := metrics.Snapshot()
		assert.Equal(t, int64(3), snapshot["retries"].(map[string]int64)["POST /x"])
	})
}
