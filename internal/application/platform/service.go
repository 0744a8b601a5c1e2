// Package platform is the entry point the router layer calls. It wires the
// access registry, the interaction registry and the profile aggregator
// behind one Service and takes the caller's identity explicitly on every
// call.
package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/campus-hub/campus-social/internal/application/interaction"
	"github.com/campus-hub/campus-social/internal/application/profile"
	"github.com/campus-hub/campus-social/internal/domain/access"
	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/pkg/logger"
)

// Sender is the name the service uses when notifying the mediator.
const Sender = "platform"

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// Identity is an already authenticated caller.
type Identity struct {
	UserID int64
	Role   string
}

// ToggleResult is returned by ToggleInteraction and React. Warnings lists
// reactors that failed after the toggle had been stored.
type ToggleResult struct {
	Type     post.InteractionType `json:"type"`
	PostID   int64                `json:"post_id"`
	Active   bool                 `json:"active"`
	Warnings []string             `json:"warnings,omitempty"`
}

// ProfileView is what ViewProfile returns. Exactly one of Full and Public
// is set.
type ProfileView struct {
	Full     *profile.FullProfile   `json:"full,omitempty"`
	Public   *profile.PublicProfile `json:"public,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
}

// Config contains the Service dependencies.
type Config struct {
	Access       *access.Registry
	Interactions *interaction.Registry
	Profiles     *profile.Aggregator

	// Mediator receives profile.viewed and access.denied. Defaults to
	// shared.NopMediator.
	Mediator shared.Mediator

	Logger *slog.Logger
}

// Service implements the core operations.
type Service struct {
	access       *access.Registry
	interactions *interaction.Registry
	profiles     *profile.Aggregator
	mediator     shared.Mediator
	logger       *slog.Logger
}

// NewService validates cfg and builds the service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Access == nil {
		return nil, errors.New("platform: access registry is required")
	}
	if cfg.Interactions == nil {
		return nil, errors.New("platform: interaction registry is required")
	}
	if cfg.Profiles == nil {
		return nil, errors.New("platform: profile aggregator is required")
	}
	if cfg.Mediator == nil {
		cfg.Mediator = shared.NopMediator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Service{
		access:       cfg.Access,
		interactions: cfg.Interactions,
		profiles:     cfg.Profiles,
		mediator:     cfg.Mediator,
		logger:       cfg.Logger,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CORE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// CheckAccess reports whether id may perform actx.Action on resource.
// Unknown roles are denied.
func (s *Service) CheckAccess(id Identity, resource string, actx access.Context) bool {
	return s.access.CanAccess(id.UserID, id.Role, resource, actx)
}

// ToggleInteraction flips the interaction of userID on postID.
// interactionType is case-insensitive.
func (s *Service) ToggleInteraction(ctx context.Context, interactionType string, postID, userID int64) (ToggleResult, error) {
	t := post.ParseInteractionType(interactionType)

	out, err := s.interactions.Toggle(ctx, t, postID, userID)
	if err != nil {
		return ToggleResult{}, err
	}

	return ToggleResult{
		Type:     out.Result.Type,
		PostID:   out.Result.PostID,
		Active:   out.Result.Active,
		Warnings: warnings(out.Delivery),
	}, nil
}

// GetFullProfile returns nil, nil for an unknown user.
func (s *Service) GetFullProfile(ctx context.Context, userID int64) (*profile.FullProfile, error) {
	return s.profiles.GetFullProfile(ctx, userID)
}

// GetPublicProfile returns nil, nil for an unknown user.
func (s *Service) GetPublicProfile(ctx context.Context, userID int64) (*profile.PublicProfile, error) {
	return s.profiles.GetPublicProfile(ctx, userID)
}

// ══════════════════════════════════════════════════════════════════════════════
// GATED OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// React checks that id may react to the post and then toggles the
// interaction. A denial returns shared.ErrAccessDenied.
func (s *Service) React(ctx context.Context, id Identity, interactionType string, postID int64) (ToggleResult, error) {
	resource := access.ResourcePost + ":" + strconv.FormatInt(postID, 10)

	if !s.CheckAccess(id, resource, access.Context{Action: access.ActionReact}) {
		s.denied(ctx, id, resource, access.ActionReact)
		return ToggleResult{}, shared.NewDomainError("platform", "React", shared.ErrAccessDenied,
			fmt.Sprintf("role %q may not react to %s", id.Role, resource))
	}

	return s.ToggleInteraction(ctx, interactionType, postID, id.UserID)
}

// ViewProfile returns the full profile when the viewer may update it
// (its owner, or an admin) and the public profile otherwise. It returns
// nil, nil for an unknown user.
func (s *Service) ViewProfile(ctx context.Context, viewer Identity, userID int64) (*ProfileView, error) {
	resource := access.ResourceProfile + ":" + strconv.FormatInt(userID, 10)
	canSeeFull := s.CheckAccess(viewer, resource, access.OwnedBy(access.ActionUpdate, userID))

	full, err := s.profiles.GetFullProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if full == nil {
		return nil, nil
	}

	view := &ProfileView{}
	if canSeeFull {
		view.Full = full
	} else {
		view.Public = full.Public()
	}

	delivery := s.mediator.Notify(ctx, Sender, shared.EventProfileViewed, shared.Payload{
		shared.KeyUserID:   userID,
		shared.KeyViewerID: viewer.UserID,
		shared.KeyFull:     canSeeFull,
	})
	view.Warnings = warnings(delivery)

	return view, nil
}

func (s *Service) denied(ctx context.Context, id Identity, resource string, action access.Action) {
	s.logger.LogAttrs(ctx, slog.LevelInfo, "access denied",
		logger.UserID(id.UserID),
		logger.Role(id.Role),
		slog.String("resource", resource),
		logger.Operation(string(action)),
	)
	s.mediator.Notify(ctx, Sender, shared.EventAccessDenied, shared.Payload{
		shared.KeyUserID:   id.UserID,
		shared.KeyRole:     id.Role,
		shared.KeyResource: resource,
		shared.KeyAction:   string(action),
	})
}

func warnings(d shared.Delivery) []string {
	if d.OK() {
		return nil
	}
	out := make([]string, len(d.Failures))
	for i, f := range d.Failures {
		out[i] = fmt.Sprintf("%s: %v", f.Reactor, f.Err)
	}
	return out
}
