// Package eventhandler contains mediator reactors that live in the
// application layer.
package eventhandler

import (
	"context"
	"log/slog"

	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/pkg/logger"
)

// ═══════════════════════════════════════════════════════════════════════════
// ACTIVITY LOG
// Writes one structured log line per core event: reactions, profile views
// and access denials. It never fails, so it is safe to register first.
// ═══════════════════════════════════════════════════════════════════════════

// ActivityLogConfig contains configuration for the activity log.
type ActivityLogConfig struct {
	// Level is used for reactions and profile views.
	Level slog.Level

	// DenialLevel is used for access.denied.
	DenialLevel slog.Level
}

// DefaultActivityLogConfig returns the default configuration.
func DefaultActivityLogConfig() ActivityLogConfig {
	return ActivityLogConfig{
		Level:       slog.LevelInfo,
		DenialLevel: slog.LevelWarn,
	}
}

// ActivityLog is a reactor that logs core activity.
type ActivityLog struct {
	logger *slog.Logger
	config ActivityLogConfig
}

// NewActivityLog creates the activity log reactor.
func NewActivityLog(log *slog.Logger, config ActivityLogConfig) *ActivityLog {
	if log == nil {
		log = slog.Default()
	}
	return &ActivityLog{
		logger: log.With(logger.Component("activity")),
		config: config,
	}
}

// Events returns the events the log should be registered for.
func (a *ActivityLog) Events() []shared.EventName {
	return []shared.EventName{
		shared.EventInteractionToggled,
		shared.EventProfileViewed,
		shared.EventAccessDenied,
	}
}

// React implements shared.Reactor.
func (a *ActivityLog) React(ctx context.Context, n shared.Notification) error {
	attrs := []slog.Attr{
		logger.Event(string(n.Name)),
		slog.String("sender", n.Sender),
		slog.String("notification_id", n.ID),
	}
	level := a.config.Level

	switch n.Name {
	case shared.EventInteractionToggled:
		attrs = appendInt(attrs, n.Payload, shared.KeyPostID)
		attrs = appendInt(attrs, n.Payload, shared.KeyUserID)
		if t, ok := n.Payload.String(shared.KeyType); ok {
			attrs = append(attrs, slog.String(shared.KeyType, t))
		}
		if active, ok := n.Payload.Bool(shared.KeyActive); ok {
			attrs = append(attrs, slog.Bool(shared.KeyActive, active))
		}
	case shared.EventProfileViewed:
		attrs = appendInt(attrs, n.Payload, shared.KeyUserID)
		attrs = appendInt(attrs, n.Payload, shared.KeyViewerID)
		if full, ok := n.Payload.Bool(shared.KeyFull); ok {
			attrs = append(attrs, slog.Bool(shared.KeyFull, full))
		}
	case shared.EventAccessDenied:
		level = a.config.DenialLevel
		attrs = appendInt(attrs, n.Payload, shared.KeyUserID)
		for _, k := range []string{shared.KeyRole, shared.KeyResource, shared.KeyAction} {
			if v, ok := n.Payload.String(k); ok {
				attrs = append(attrs, slog.String(k, v))
			}
		}
	default:
		attrs = append(attrs, slog.Any("payload", n.Payload))
	}

	a.logger.LogAttrs(ctx, level, "activity", attrs...)
	return nil
}

func appendInt(attrs []slog.Attr, p shared.Payload, key string) []slog.Attr {
	if v, ok := p.Int64(key); ok {
		return append(attrs, slog.Int64(key, v))
	}
	return attrs
}
