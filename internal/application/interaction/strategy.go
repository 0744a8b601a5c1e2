// Package interaction implements post reactions (Like, Love, Save, ...) as
// toggle strategies resolved through a registry.
package interaction

import (
	"context"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STRATEGY
// ══════════════════════════════════════════════════════════════════════════════

// Result is the outcome of a toggle.
type Result struct {
	Type   post.InteractionType `json:"type"`
	PostID int64                `json:"post_id"`
	UserID int64                `json:"user_id"`

	// Active is true when the row exists after the toggle.
	Active bool `json:"active"`
}

// Strategy is one interaction type.
type Strategy interface {
	// Type returns the interaction type this strategy handles.
	Type() post.InteractionType

	// CanExecute checks the preconditions. It reports false, not an error,
	// when they fail; errors are storage faults.
	CanExecute(ctx context.Context, postID, userID int64) (bool, error)

	// Execute toggles the interaction. It refuses with shared.ErrNotAllowed
	// when CanExecute is false.
	Execute(ctx context.Context, postID, userID int64) (Result, error)
}

// Options configures a toggle strategy.
type Options struct {
	// AllowSelf lets an author react to their own post.
	AllowSelf bool
}

// DefaultOptions allows every reaction, including on one's own posts.
func DefaultOptions() Options {
	return Options{AllowSelf: true}
}

// ToggleStrategy is the ledger-backed strategy shared by the built-in types.
type ToggleStrategy struct {
	typ    post.InteractionType
	opts   Options
	posts  post.Repository
	ledger post.InteractionRepository
}

// NewToggleStrategy creates a strategy for typ. Use it to register types
// beyond the built-in ones.
func NewToggleStrategy(typ post.InteractionType, posts post.Repository, ledger post.InteractionRepository, opts Options) *ToggleStrategy {
	return &ToggleStrategy{typ: typ, opts: opts, posts: posts, ledger: ledger}
}

// NewLike creates the Like strategy.
func NewLike(posts post.Repository, ledger post.InteractionRepository, opts Options) *ToggleStrategy {
	return NewToggleStrategy(post.InteractionLike, posts, ledger, opts)
}

// NewLove creates the Love strategy.
func NewLove(posts post.Repository, ledger post.InteractionRepository, opts Options) *ToggleStrategy {
	return NewToggleStrategy(post.InteractionLove, posts, ledger, opts)
}

// NewSave creates the Save strategy.
func NewSave(posts post.Repository, ledger post.InteractionRepository, opts Options) *ToggleStrategy {
	return NewToggleStrategy(post.InteractionSave, posts, ledger, opts)
}

// Type implements Strategy.
func (s *ToggleStrategy) Type() post.InteractionType {
	return s.typ
}

// Options returns the strategy configuration.
func (s *ToggleStrategy) Options() Options {
	return s.opts
}

// CanExecute requires the post to exist and, unless AllowSelf is set, the
// user not to be its author.
func (s *ToggleStrategy) CanExecute(ctx context.Context, postID, userID int64) (bool, error) {
	p, err := s.posts.Find(ctx, postID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}
	if !s.opts.AllowSelf && p.AuthorID == userID {
		return false, nil
	}
	return true, nil
}

// Execute flips the ledger row with a single atomic storage call.
func (s *ToggleStrategy) Execute(ctx context.Context, postID, userID int64) (Result, error) {
	ok, err := s.CanExecute(ctx, postID, userID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, shared.NewDomainError("interaction", "Execute", shared.ErrNotAllowed,
			string(s.typ)+" is not allowed on this post")
	}

	active, err := s.ledger.Toggle(ctx, post.Key{PostID: postID, UserID: userID, Type: s.typ})
	if err != nil {
		return Result{}, err
	}

	return Result{Type: s.typ, PostID: postID, UserID: userID, Active: active}, nil
}

// Defaults returns the Like, Love and Save strategies. A type missing from
// opts gets DefaultOptions.
func Defaults(posts post.Repository, ledger post.InteractionRepository, opts map[post.InteractionType]Options) []Strategy {
	optionsFor := func(t post.InteractionType) Options {
		if o, ok := opts[t]; ok {
			return o
		}
		return DefaultOptions()
	}
	return []Strategy{
		NewLike(posts, ledger, optionsFor(post.InteractionLike)),
		NewLove(posts, ledger, optionsFor(post.InteractionLove)),
		NewSave(posts, ledger, optionsFor(post.InteractionSave)),
	}
}
