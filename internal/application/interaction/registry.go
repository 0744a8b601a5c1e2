package interaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRY
// ══════════════════════════════════════════════════════════════════════════════

// Sender is the name the registry uses when notifying the mediator.
const Sender = "interaction"

// Outcome is what Toggle returns: the strategy result and the report of
// the reactors that observed it.
type Outcome struct {
	Result   Result
	Delivery shared.Delivery
}

// RegistryConfig contains configuration for the Registry.
type RegistryConfig struct {
	// Mediator receives interaction.toggled after every successful toggle.
	// Defaults to shared.NopMediator.
	Mediator shared.Mediator

	Logger *slog.Logger
}

// Registry maps interaction types to strategies and runs toggles.
// Identical toggles that are in flight at the same time are coalesced, so
// both callers observe the one result the ledger produced.
type Registry struct {
	mu         sync.RWMutex
	strategies map[post.InteractionType]Strategy

	mediator shared.Mediator
	logger   *slog.Logger
	flights  singleflight.Group
}

// NewRegistry creates an empty registry.
func NewRegistry(config RegistryConfig) *Registry {
	if config.Mediator == nil {
		config.Mediator = shared.NopMediator{}
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Registry{
		strategies: make(map[post.InteractionType]Strategy),
		mediator:   config.Mediator,
		logger:     config.Logger,
	}
}

// Register adds or replaces the strategy for its type.
func (r *Registry) Register(strategies ...Strategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range strategies {
		if s == nil {
			return errors.New("interaction: strategy cannot be nil")
		}
		t := s.Type()
		if t == "" {
			return errors.New("interaction: strategy type cannot be empty")
		}
		r.strategies[t] = s
	}
	return nil
}

// Resolve returns the strategy for t.
func (r *Registry) Resolve(t post.InteractionType) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[t]
	return s, ok
}

// Types returns the registered types in lexical order.
func (r *Registry) Types() []post.InteractionType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]post.InteractionType, 0, len(r.strategies))
	for t := range r.strategies {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// CanExecute resolves t and checks its preconditions.
func (r *Registry) CanExecute(ctx context.Context, t post.InteractionType, postID, userID int64) (bool, error) {
	s, ok := r.Resolve(t)
	if !ok {
		return false, unsupported(t)
	}
	return s.CanExecute(ctx, postID, userID)
}

// Toggle resolves t and executes it. An unknown type fails with
// shared.ErrUnsupportedInteraction before any storage call. After a
// successful toggle the mediator is notified; reactor failures are only
// reported in the Outcome.
//
// A caller whose ctx ends first returns ctx.Err() while the toggle it joined
// still completes for the others. Storage calls are then bounded by the
// repositories' own query timeouts, not by the caller's deadline.
func (r *Registry) Toggle(ctx context.Context, t post.InteractionType, postID, userID int64) (Outcome, error) {
	s, ok := r.Resolve(t)
	if !ok {
		return Outcome{}, unsupported(t)
	}

	// The shared run is detached from the caller that started it, so a
	// cancelled caller cannot fail the others. Each caller still waits
	// under its own ctx.
	key := fmt.Sprintf("%s:%d:%d", t, postID, userID)
	detached := context.WithoutCancel(ctx)
	ch := r.flights.DoChan(key, func() (interface{}, error) {
		return r.execute(detached, s, postID, userID)
	})

	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			r.logger.Debug("toggle coalesced", "type", t, "post_id", postID, "user_id", userID)
		}
		if res.Err != nil {
			return Outcome{}, res.Err
		}
		return res.Val.(Outcome), nil
	}
}

func (r *Registry) execute(ctx context.Context, s Strategy, postID, userID int64) (Outcome, error) {
	res, err := s.Execute(ctx, postID, userID)
	if err != nil {
		if !shared.IsNotAllowed(err) {
			r.logger.Error("toggle failed",
				"type", s.Type(),
				"post_id", postID,
				"user_id", userID,
				"error", err,
			)
		}
		return Outcome{}, err
	}

	delivery := r.mediator.Notify(ctx, Sender, shared.EventInteractionToggled, shared.Payload{
		shared.KeyPostID: res.PostID,
		shared.KeyUserID: res.UserID,
		shared.KeyType:   string(res.Type),
		shared.KeyActive: res.Active,
	})

	return Outcome{Result: res, Delivery: delivery}, nil
}

func unsupported(t post.InteractionType) error {
	return shared.NewDomainError("interaction", "Resolve", shared.ErrUnsupportedInteraction,
		fmt.Sprintf("no strategy for %q", t))
}
