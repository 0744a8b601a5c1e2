package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("redis down")

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	var transitions []State
	cb := New("redis", WithFailureThreshold(2), WithOnStateChange(func(_ string, _, to State) {
		transitions = append(transitions, to)
	}))
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
	assert.Equal(t, 1, cb.Counts().Rejected)
	assert.Equal(t, []State{StateOpen}, transitions)
}

func TestBreaker_HalfOpenRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	cb := New("redis", WithFailureThreshold(1), WithSuccessThreshold(1), WithTimeout(time.Second))
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, fail), errDown)
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(2 * time.Second)
	require.NoError(t, cb.Execute(ctx, ok))
	assert.Equal(t, StateClosed, cb.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(0, 0)
	cb := New("redis", WithFailureThreshold(1), WithTimeout(time.Second))
	cb.now = func() time.Time { return now }
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	now = now.Add(2 * time.Second)
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, ok), ErrCircuitOpen)
}

func TestForReactor_IgnoresCancellation(t *testing.T) {
	cb := ForReactor("counter", nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_ = cb.Execute(ctx, func(context.Context) error { return context.Canceled })
	}
	assert.Equal(t, StateClosed, cb.State())

	for i := 0; i < 3; i++ {
		_ = cb.Execute(ctx, fail)
	}
	assert.Equal(t, StateOpen, cb.State())
}

func TestReset(t *testing.T) {
	cb := New("redis", WithFailureThreshold(1))
	_ = cb.Execute(context.Background(), fail)

	cb.Reset()

	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, Counts{}, cb.Counts())
	assert.Equal(t, "closed", cb.State().String())
	assert.Equal(t, "redis", cb.Name())
}
