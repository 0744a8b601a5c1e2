// Package messaging implements the event mediator for Campus Social.
// Reactors are registered once at startup; the built Mediator is immutable
// and invokes reactors synchronously within the caller's request.
package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BUILDER
// ══════════════════════════════════════════════════════════════════════════════

type registration struct {
	name    string
	reactor shared.Reactor
}

// MediatorBuilder collects reactor registrations before the mediator is
// built. It is not safe for concurrent use; build at startup.
type MediatorBuilder struct {
	reactors map[shared.EventName][]registration
	logger   *slog.Logger
	metrics  bool
	err      error
}

// MediatorConfig contains configuration for the Mediator.
type MediatorConfig struct {
	// Logger for structured logging
	Logger *slog.Logger

	// EnableMetrics enables metrics collection
	EnableMetrics bool
}

// NewMediatorBuilder starts a new registration set.
func NewMediatorBuilder(config MediatorConfig) *MediatorBuilder {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &MediatorBuilder{
		reactors: make(map[shared.EventName][]registration),
		logger:   config.Logger,
		metrics:  config.EnableMetrics,
	}
}

// Register adds reactor for event. name identifies the reactor in logs and
// failure reports. Reactors for one event run in registration order.
func (b *MediatorBuilder) Register(event shared.EventName, name string, reactor shared.Reactor) *MediatorBuilder {
	if b.err != nil {
		return b
	}
	if event == "" {
		b.err = errors.New("mediator: event name cannot be empty")
		return b
	}
	if reactor == nil {
		b.err = fmt.Errorf("mediator: reactor %q for %s cannot be nil", name, event)
		return b
	}
	if name == "" {
		name = fmt.Sprintf("%s#%d", event, len(b.reactors[event])+1)
	}

	b.reactors[event] = append(b.reactors[event], registration{name: name, reactor: reactor})
	return b
}

// Build returns the immutable mediator, or the first registration error.
func (b *MediatorBuilder) Build() (*Mediator, error) {
	if b.err != nil {
		return nil, b.err
	}

	reactors := make(map[shared.EventName][]registration, len(b.reactors))
	for event, regs := range b.reactors {
		reactors[event] = append([]registration(nil), regs...)
	}

	m := &Mediator{
		reactors: reactors,
		logger:   b.logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	if b.metrics {
		m.metrics = NewMediatorMetrics()
	}

	for event, regs := range reactors {
		m.logger.Debug("mediator reactors registered", "event", event, "count", len(regs))
	}

	return m, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// MEDIATOR
// ══════════════════════════════════════════════════════════════════════════════

// Mediator implements shared.Mediator. The reactor table is never mutated
// after Build, so Notify needs no locking.
type Mediator struct {
	reactors map[shared.EventName][]registration
	logger   *slog.Logger
	metrics  *MediatorMetrics
	now      func() time.Time
	newID    func() string
}

var _ shared.Mediator = (*Mediator)(nil)

// Notify invokes every reactor registered for name, in order. A failing or
// panicking reactor is logged and reported in the Delivery; the remaining
// reactors still run.
func (m *Mediator) Notify(ctx context.Context, sender string, name shared.EventName, payload shared.Payload) shared.Delivery {
	n := shared.Notification{
		ID:         m.newID(),
		Sender:     sender,
		Name:       name,
		Payload:    payload,
		OccurredAt: m.now(),
	}
	delivery := shared.Delivery{NotificationID: n.ID}

	regs := m.reactors[name]
	if m.metrics != nil {
		m.metrics.RecordNotify(name)
	}
	if len(regs) == 0 {
		m.logger.Debug("no reactors for event", "event", name, "sender", sender)
		return delivery
	}

	for _, reg := range regs {
		start := time.Now()
		err := invoke(ctx, reg.reactor, n)
		duration := time.Since(start)

		if m.metrics != nil {
			m.metrics.RecordReactor(name, duration, err == nil)
		}

		if err != nil {
			m.logger.Warn("reactor failed",
				"event", name,
				"reactor", reg.name,
				"sender", sender,
				"notification_id", n.ID,
				"duration", duration,
				"error", err,
			)
			delivery.Failures = append(delivery.Failures, shared.ReactorFailure{
				Reactor: reg.name,
				Event:   name,
				Err:     err,
			})
			continue
		}
		delivery.Delivered++
	}

	return delivery
}

// Reactors returns the reactor names registered for event, in order.
func (m *Mediator) Reactors(event shared.EventName) []string {
	regs := m.reactors[event]
	names := make([]string, len(regs))
	for i, r := range regs {
		names[i] = r.name
	}
	return names
}

// Metrics returns the current metrics, or nil when disabled.
func (m *Mediator) Metrics() *MediatorMetrics {
	return m.metrics
}

// invoke runs a reactor and converts a panic into ErrReactorPanic.
func invoke(ctx context.Context, reactor shared.Reactor, n shared.Notification) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrReactorPanic, p)
		}
	}()
	return reactor(ctx, n)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrReactorPanic is reported when a reactor panics.
	ErrReactorPanic = errors.New("reactor panicked")
)
