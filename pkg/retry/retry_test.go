package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	twerrors "twharvest/pkg/errors"
	"twharvest/pkg/logger"
)

var retryStatuses = []int{401, 404, 500, 503}

func retryIf(err error) bool { return twerrors.IsRetryable(err, retryStatuses) }

func TestDoSucceedsAfterRetries(t *testing.T) {
	calls := 0
	var delays []time.Duration

	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return twerrors.FromStatus(503, 0, "over capacity")
		}
		return nil
	}, Config{
		MaxAttempts: 3,
		Backoff:     ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retryIf,
		OnRetry:     func(_ int, _ error, d time.Duration) { delays = append(delays, d) },
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Millisecond, time.Millisecond}, delays)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	calls := 0
	rateLimited := twerrors.RateLimited("Rate limit exceeded", 88)

	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return rateLimited
	}, Config{MaxAttempts: 3, RetryIf: retryIf})

	assert.Equal(t, 1, calls)
	assert.Same(t, rateLimited, err)
}

func TestDoExhausted(t *testing.T) {
	tl := logger.NewTestLogger()
	calls := 0

	err := Do(context.Background(), func(ctx context.Context) error {
		calls++
		return twerrors.FromStatus(500, 131, "internal error")
	}, Config{
		MaxAttempts: 3,
		Backoff:     ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     retryIf,
		Logger:      tl,
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.True(t, twerrors.IsTransient(err), "last error must stay classifiable")
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 3)
}

func TestDoCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	err := Do(ctx, func(ctx context.Context) error {
		cancel()
		return twerrors.Network(errors.New("connection reset"))
	}, Config{
		MaxAttempts: 3,
		Backoff:     ConstantBackoff{Delay: time.Hour},
		RetryIf:     retryIf,
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoWithResult(t *testing.T) {
	calls := 0
	got, err := DoWithResult(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", twerrors.Network(errors.New("eof"))
		}
		return "ok", nil
	}, Config{MaxAttempts: 2, RetryIf: retryIf})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestConstantBackoff(t *testing.T) {
	c := ConstantBackoff{Delay: 5 * time.Second}
	assert.Equal(t, time.Duration(0), c.NextDelay(0))
	assert.Equal(t, 5*time.Second, c.NextDelay(4))
}

func TestWait(t *testing.T) {
	assert.NoError(t, Wait(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, Wait(ctx, 0), context.Canceled)
}
