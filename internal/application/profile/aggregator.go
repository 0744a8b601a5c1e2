// Package profile composes a user's profile from the user, skill, project,
// post and CV repositories.
package profile

import (
	"context"
	"fmt"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/user"
)

// DefaultRecentPostLimit is how many posts a full profile carries.
const DefaultRecentPostLimit = 10

type Sources struct {
	Users    user.Repository
	Skills   user.SkillRepository
	Projects project.Repository
	Posts    post.Repository
	CVs      user.CVRepository
}

// Aggregator only reads. It holds no state besides its sources, so one
// value can serve concurrent requests.
type Aggregator struct {
	src         Sources
	recentPosts int
}

// NewAggregator creates an aggregator. A non-positive recentPosts selects
// DefaultRecentPostLimit.
func NewAggregator(src Sources, recentPosts int) *Aggregator {
	if recentPosts <= 0 {
		recentPosts = DefaultRecentPostLimit
	}
	return &Aggregator{src: src, recentPosts: recentPosts}
}

// GetFullProfile returns nil, nil when the user does not exist.
func (a *Aggregator) GetFullProfile(ctx context.Context, userID int64) (*FullProfile, error) {
	u, err := a.src.Users.Find(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: load user %d: %w", userID, err)
	}
	if u == nil {
		return nil, nil
	}

	skills, err := a.src.Skills.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: load skills: %w", err)
	}

	projects, err := a.src.Projects.FindByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: load projects: %w", err)
	}

	recent, err := a.src.Posts.FindRecentByAuthor(ctx, userID, a.recentPosts)
	if err != nil {
		return nil, fmt.Errorf("profile: load posts: %w", err)
	}

	totalPosts, err := a.src.Posts.CountByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: count posts: %w", err)
	}

	cv, err := a.src.CVs.FindByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: load cv: %w", err)
	}

	if skills == nil {
		skills = []user.Skill{}
	}
	if projects == nil {
		projects = []project.Project{}
	}
	if recent == nil {
		recent = []post.Post{}
	}

	return &FullProfile{
		User:        u.Profile(),
		Skills:      skills,
		Projects:    projects,
		RecentPosts: recent,
		CV:          cv,
		Stats: Stats{
			TotalSkills:   len(skills),
			TotalProjects: len(projects),
			TotalPosts:    totalPosts,
		},
	}, nil
}

// GetPublicProfile returns nil, nil when the user does not exist.
func (a *Aggregator) GetPublicProfile(ctx context.Context, userID int64) (*PublicProfile, error) {
	full, err := a.GetFullProfile(ctx, userID)
	if err != nil || full == nil {
		return nil, err
	}
	return full.Public(), nil
}
