package messaging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-social/internal/domain/shared"
)

const evt shared.EventName = "test.happened"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMediator_InvokesReactorsInRegistrationOrder(t *testing.T) {
	var calls []string
	record := func(name string) shared.Reactor {
		return func(context.Context, shared.Notification) error {
			calls = append(calls, name)
			return nil
		}
	}

	m, err := NewMediatorBuilder(MediatorConfig{Logger: quietLogger()}).
		Register(evt, "first", record("first")).
		Register(evt, "second", record("second")).
		Register(evt, "third", record("third")).
		Build()
	require.NoError(t, err)

	d := m.Notify(context.Background(), "test", evt, shared.Payload{"k": 1})

	assert.Equal(t, []string{"first", "second", "third"}, calls)
	assert.Equal(t, 3, d.Delivered)
	assert.True(t, d.OK())
	assert.NotEmpty(t, d.NotificationID)
	assert.Equal(t, []string{"first", "second", "third"}, m.Reactors(evt))
}

func TestMediator_FailureDoesNotStopSiblings(t *testing.T) {
	boom := errors.New("boom")
	var ranAfter bool

	m, err := NewMediatorBuilder(MediatorConfig{Logger: quietLogger(), EnableMetrics: true}).
		Register(evt, "failing", func(context.Context, shared.Notification) error { return boom }).
		Register(evt, "panicking", func(context.Context, shared.Notification) error { panic("oops") }).
		Register(evt, "after", func(context.Context, shared.Notification) error {
			ranAfter = true
			return nil
		}).
		Build()
	require.NoError(t, err)

	d := m.Notify(context.Background(), "test", evt, nil)

	assert.True(t, ranAfter)
	assert.Equal(t, 1, d.Delivered)
	require.Len(t, d.Failures, 2)
	assert.Equal(t, "failing", d.Failures[0].Reactor)
	assert.ErrorIs(t, d.Failures[0].Err, boom)
	assert.Equal(t, "panicking", d.Failures[1].Reactor)
	assert.ErrorIs(t, d.Failures[1].Err, ErrReactorPanic)

	snap := m.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalNotified)
	assert.Equal(t, int64(3), snap.TotalReactorExecs)
	assert.Equal(t, int64(2), snap.TotalReactorFailures)
}

func TestMediator_PassesPayloadUntouched(t *testing.T) {
	payload := shared.Payload{"post_id": int64(1), "nested": map[string]any{"a": "b"}}
	var got shared.Notification

	m, err := NewMediatorBuilder(MediatorConfig{Logger: quietLogger()}).
		Register(evt, "capture", func(_ context.Context, n shared.Notification) error {
			got = n
			return nil
		}).
		Build()
	require.NoError(t, err)

	m.Notify(context.Background(), "sender-x", evt, payload)

	assert.Equal(t, payload, got.Payload)
	assert.Equal(t, "sender-x", got.Sender)
	assert.Equal(t, evt, got.Name)
	assert.False(t, got.OccurredAt.IsZero())
}

func TestMediator_UnknownEventIsNoop(t *testing.T) {
	m, err := NewMediatorBuilder(MediatorConfig{Logger: quietLogger()}).Build()
	require.NoError(t, err)

	d := m.Notify(context.Background(), "test", "nobody.listens", nil)

	assert.Equal(t, 0, d.Delivered)
	assert.True(t, d.OK())
}

func TestMediatorBuilder_RejectsBadRegistrations(t *testing.T) {
	_, err := NewMediatorBuilder(MediatorConfig{}).Register(evt, "nil", nil).Build()
	assert.Error(t, err)

	_, err = NewMediatorBuilder(MediatorConfig{}).
		Register("", "x", func(context.Context, shared.Notification) error { return nil }).
		Build()
	assert.Error(t, err)
}

func TestMediator_BuiltTableIsIsolatedFromBuilder(t *testing.T) {
	noop := func(context.Context, shared.Notification) error { return nil }

	b := NewMediatorBuilder(MediatorConfig{Logger: quietLogger()}).Register(evt, "one", noop)
	m, err := b.Build()
	require.NoError(t, err)

	b.Register(evt, "two", noop)

	assert.Equal(t, []string{"one"}, m.Reactors(evt))
}
