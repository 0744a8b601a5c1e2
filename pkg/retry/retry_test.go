package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(r *Retrier) *Retrier {
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	var retries []int
	r := noSleep(New(WithMaxAttempts(4), WithOnRetry(func(attempt int, _ error, _ time.Duration) {
		retries = append(retries, attempt)
	})))

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDo_StopsAtMaxAttempts(t *testing.T) {
	r := noSleep(New(WithMaxAttempts(2)))
	boom := errors.New("boom")

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}

func TestDo_PermanentIsNotRetried(t *testing.T) {
	r := noSleep(New(WithMaxAttempts(5)))
	bad := errors.New("invalid url")

	calls := 0
	err := r.Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(bad)
	})

	assert.Equal(t, bad, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetryIf(t *testing.T) {
	r := noSleep(New(WithMaxAttempts(5), WithRetryIf(func(error) bool { return false })))

	calls := 0
	_ = r.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("x")
	})

	assert.Equal(t, 1, calls)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := New().Do(ctx, func(context.Context) error {
		calls++
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDoWithData(t *testing.T) {
	r := noSleep(New(WithMaxAttempts(3)))

	calls := 0
	v, err := DoWithData(context.Background(), r, func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("not yet")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestDelay_CappedAndJittered(t *testing.T) {
	r := New(WithInitialDelay(100*time.Millisecond), WithMaxDelay(300*time.Millisecond), WithJitter(0))

	assert.Equal(t, 100*time.Millisecond, r.delay(1))
	assert.Equal(t, 200*time.Millisecond, r.delay(2))
	assert.Equal(t, 300*time.Millisecond, r.delay(5))

	j := New(WithInitialDelay(100*time.Millisecond), WithJitter(0.5))
	for i := 0; i < 20; i++ {
		d := j.delay(1)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}
