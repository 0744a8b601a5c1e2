package shared

import (
	"context"
	"time"
)

// EventName identifies a notification routed through the Mediator.
type EventName string

// Events announced by the core. Reactors subscribe to these names at startup.
const (
	// EventInteractionToggled fires after a reaction row was created or removed.
	EventInteractionToggled EventName = "interaction.toggled"

	// EventProfileViewed fires after a profile view was composed for a caller.
	EventProfileViewed EventName = "profile.viewed"

	// EventAccessDenied fires when a gated core operation was refused.
	EventAccessDenied EventName = "access.denied"
)

// Payload is the event data handed to reactors. The mediator never
// transforms it.
type Payload map[string]any

// Notification is what a reactor receives.
type Notification struct {
	// ID uniquely identifies this notification (for tracing and dedup downstream).
	ID string

	// Sender names the component that called Notify.
	Sender string

	// Name is the event name.
	Name EventName

	// Payload is passed through untouched.
	Payload Payload

	// OccurredAt is when Notify was called.
	OccurredAt time.Time
}

// Reactor is a handler invoked by the mediator in response to a named event.
type Reactor func(ctx context.Context, n Notification) error

// ReactorFailure describes one reactor that returned an error or panicked.
type ReactorFailure struct {
	Reactor string
	Event   EventName
	Err     error
}

// Delivery is the report returned to the sender of a notification.
// Failures are warnings: the triggering operation has already succeeded.
type Delivery struct {
	NotificationID string
	Delivered      int
	Failures       []ReactorFailure
}

// OK reports whether every reactor succeeded.
func (d Delivery) OK() bool {
	return len(d.Failures) == 0
}

// Mediator decouples components: a sender announces an event name and
// payload, and every reactor registered for that name is invoked.
// Components receive a Mediator at construction and never reference each
// other directly.
type Mediator interface {
	Notify(ctx context.Context, sender string, name EventName, payload Payload) Delivery
}

// NopMediator discards notifications. Useful where no reactors are wired.
type NopMediator struct{}

// Notify implements Mediator.
func (NopMediator) Notify(context.Context, string, EventName, Payload) Delivery {
	return Delivery{}
}

// Payload keys used by the core's events.
const (
	KeyPostID   = "post_id"
	KeyUserID   = "user_id"
	KeyType     = "type"
	KeyActive   = "active"
	KeyViewerID = "viewer_id"
	KeyRole     = "role"
	KeyResource = "resource"
	KeyAction   = "action"
	KeyFull     = "full"
)

// Int64 returns the int64 stored under key. Values of other integer kinds
// are converted.
func (p Payload) Int64(key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	default:
		return 0, false
	}
}

// String returns the string stored under key, accepting fmt.Stringer values.
func (p Payload) String(key string) (string, bool) {
	switch v := p[key].(type) {
	case string:
		return v, true
	case interface{ String() string }:
		return v.String(), true
	default:
		return "", false
	}
}

// Bool returns the bool stored under key.
func (p Payload) Bool(key string) (bool, bool) {
	v, ok := p[key].(bool)
	return v, ok
}
