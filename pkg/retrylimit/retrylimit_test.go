package retrylimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialDelay:   time.Millisecond,
		MaxDelay:       2 * time.Millisecond,
		RateLimitDelay: time.Millisecond,
		Multiplier:     2,
	}
}

func TestWithRetryConfig_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return &StatusError{Code: http.StatusBadGateway, Err: errors.New("bad gateway")}
		}
		return nil
	}, nil, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryConfig_FatalStopsImmediately(t *testing.T) {
	boom := errors.New("missing access")
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return Fatal(boom)
	}, nil, fastConfig())

	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetryConfig_GivesUpAfterMaxAttempts(t *testing.T) {
	boom := errors.New("flaky")
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return boom
	}, nil, fastConfig())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "max attempts (4)")
	assert.Equal(t, 4, calls)
}

func TestWithRetryConfig_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetryConfig(ctx, func() error { return nil }, nil, fastConfig())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveLimiter_BacksOffOnRateLimit(t *testing.T) {
	lim := NewAdaptiveLimiter(8, 1, 10, 1, 0.5)
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls == 1 {
			return &StatusError{Code: http.StatusTooManyRequests, Err: errors.New("slow down")}
		}
		return nil
	}, lim, fastConfig())

	require.NoError(t, err)
	assert.Equal(t, 4.0, lim.CurrentLimit())
}

func TestAdaptiveLimiter_Bounds(t *testing.T) {
	lim := NewAdaptiveLimiter(2, 1, 3, 5, 0.1)
	lim.Success()
	assert.Equal(t, 3.0, lim.CurrentLimit())
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())
}

func TestStatusOf(t *testing.T) {
	err := &StatusError{Code: 503, Err: errors.New("unavailable")}
	wrapped := errors.Join(errors.New("outer"), err)

	assert.Equal(t, 503, StatusOf(wrapped))
	assert.True(t, IsServerError(wrapped))
	assert.False(t, IsRateLimit(wrapped))
	assert.Equal(t, 0, StatusOf(errors.New("plain")))
}
