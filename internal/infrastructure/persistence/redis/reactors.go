package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REACTION COUNTER
// ══════════════════════════════════════════════════════════════════════════════

// CounterStore is the subset of the Redis client the counter needs.
// *redis.Client satisfies it.
type CounterStore interface {
	HIncrBy(ctx context.Context, key, field string, incr int64) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// ReactionCounter keeps a hash per post with one counter per interaction
// type. It reacts to interaction.toggled: +1 when the row became active,
// -1 when it was removed.
type ReactionCounter struct {
	store  CounterStore
	logger *slog.Logger
}

// NewReactionCounter creates a counter over store.
func NewReactionCounter(store CounterStore, logger *slog.Logger) *ReactionCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReactionCounter{store: store, logger: logger}
}

// React is a shared.Reactor for interaction.toggled.
func (c *ReactionCounter) React(ctx context.Context, n shared.Notification) error {
	postID, ok := n.Payload.Int64(shared.KeyPostID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, shared.KeyPostID)
	}
	typ, ok := n.Payload.String(shared.KeyType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, shared.KeyType)
	}
	active, ok := n.Payload.Bool(shared.KeyActive)
	if !ok {
		return fmt.Errorf("%w: %s", ErrMissingField, shared.KeyActive)
	}

	delta := int64(1)
	if !active {
		delta = -1
	}

	total, err := c.store.HIncrBy(ctx, PostReactionsKey(postID), typ, delta).Result()
	if err != nil {
		return fmt.Errorf("incr reaction counter: %w", err)
	}

	c.logger.Debug("reaction counter updated",
		"post_id", postID,
		"type", typ,
		"total", total,
	)
	return nil
}

// Counts returns the cached per-type counters of a post.
func (c *ReactionCounter) Counts(ctx context.Context, postID int64) (map[string]int64, error) {
	raw, err := c.store.HGetAll(ctx, PostReactionsKey(postID)).Result()
	if err != nil {
		return nil, fmt.Errorf("read reaction counters: %w", err)
	}

	counts := make(map[string]int64, len(raw))
	for typ, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.logger.Warn("skipping malformed reaction counter", "post_id", postID, "type", typ, "value", v)
			continue
		}
		counts[typ] = n
	}
	return counts, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT FORWARDER
// ══════════════════════════════════════════════════════════════════════════════

// Publisher is the subset of the Redis client the forwarder needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Envelope is the JSON document published for each forwarded notification.
type Envelope struct {
	ID             string         `json:"id"`
	NotificationID string         `json:"notification_id"`
	InstanceID     string         `json:"instance_id"`
	Event          string         `json:"event"`
	Sender         string         `json:"sender"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Payload        shared.Payload `json:"payload"`
}

// EventForwarderConfig configures an EventForwarder.
type EventForwarderConfig struct {
	// Channel defaults to DefaultEventsChannel.
	Channel string

	// InstanceID lets subscribers skip their own messages. Generated when empty.
	InstanceID string

	Logger *slog.Logger
}

// EventForwarder publishes notifications to a Redis channel so other
// instances can observe them.
type EventForwarder struct {
	pub        Publisher
	channel    string
	instanceID string
	logger     *slog.Logger
}

// NewEventForwarder creates a forwarder publishing through pub.
func NewEventForwarder(pub Publisher, cfg EventForwarderConfig) *EventForwarder {
	if cfg.Channel == "" {
		cfg.Channel = DefaultEventsChannel
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &EventForwarder{
		pub:        pub,
		channel:    cfg.Channel,
		instanceID: cfg.InstanceID,
		logger:     cfg.Logger,
	}
}

// InstanceID returns the ID stamped on published envelopes.
func (f *EventForwarder) InstanceID() string {
	return f.instanceID
}

// React is a shared.Reactor that can be registered for any event.
func (f *EventForwarder) React(ctx context.Context, n shared.Notification) error {
	data, err := json.Marshal(Envelope{
		ID:             uuid.NewString(),
		NotificationID: n.ID,
		InstanceID:     f.instanceID,
		Event:          string(n.Name),
		Sender:         n.Sender,
		OccurredAt:     n.OccurredAt,
		Payload:        n.Payload,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	receivers, err := f.pub.Publish(ctx, f.channel, string(data)).Result()
	if err != nil {
		return fmt.Errorf("publish %s: %w", n.Name, err)
	}

	f.logger.Debug("event forwarded",
		"event", n.Name,
		"channel", f.channel,
		"receivers", receivers,
	)
	return nil
}
