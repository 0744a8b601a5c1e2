package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/internal/domain/user"
	"github.com/campus-hub/campus-social/internal/infrastructure/persistence/memory"
)

func sourcesOf(s *memory.Store) Sources {
	return Sources{
		Users:    s.Users(),
		Skills:   s.Skills(),
		Projects: s.Projects(),
		Posts:    s.Posts(),
		CVs:      s.CVs(),
	}
}

// seedUser10 creates user 10 with 3 skills, 2 projects, 12 posts and a CV.
func seedUser10(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()

	_, err := s.Users().Create(ctx, &user.User{
		ID:           10,
		Username:     "dana",
		Email:        "dana@campus.edu",
		PasswordHash: "$2a$10$secret",
		Bio:          "systems",
		FacultyID:    3,
		MajorID:      8,
		Role:         user.RoleStudent,
	})
	require.NoError(t, err)

	for _, name := range []string{"go", "sql", "rust"} {
		require.NoError(t, s.Skills().Create(ctx, user.Skill{UserID: 10, Name: name, Level: "advanced"}))
	}
	for i := 1; i <= 2; i++ {
		_, err := s.Projects().Create(ctx, &project.Project{
			OwnerID:  10,
			Title:    fmt.Sprintf("project %d", i),
			FilePath: fmt.Sprintf("uploads/10/p%d.zip", i),
			Skills:   []string{"go"},
		})
		require.NoError(t, err)
	}
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		_, err := s.Posts().Create(ctx, &post.Post{
			AuthorID:  10,
			Content:   fmt.Sprintf("post %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	require.NoError(t, s.CVs().Upsert(ctx, &user.CV{UserID: 10, FilePath: "cv/dana.pdf"}))

	return s
}

func TestGetFullProfile_User10(t *testing.T) {
	s := seedUser10(t)
	agg := NewAggregator(sourcesOf(s), 0)

	full, err := agg.GetFullProfile(context.Background(), 10)
	require.NoError(t, err)
	require.NotNil(t, full)

	assert.Equal(t, Stats{TotalSkills: 3, TotalProjects: 2, TotalPosts: 12}, full.Stats)
	require.Len(t, full.RecentPosts, 10)
	assert.Equal(t, "post 11", full.RecentPosts[0].Content)
	for i := 1; i < len(full.RecentPosts); i++ {
		assert.True(t, full.RecentPosts[i-1].CreatedAt.After(full.RecentPosts[i].CreatedAt))
	}
	require.NotNil(t, full.CV)
	assert.Equal(t, "cv/dana.pdf", full.CV.FilePath)
}

func TestGetFullProfile_StatsMatchReturnedLengths(t *testing.T) {
	s := seedUser10(t)
	full, err := NewAggregator(sourcesOf(s), 0).GetFullProfile(context.Background(), 10)
	require.NoError(t, err)

	assert.Len(t, full.Skills, full.Stats.TotalSkills)
	assert.Len(t, full.Projects, full.Stats.TotalProjects)
}

func TestGetFullProfile_NoCredentialFields(t *testing.T) {
	s := seedUser10(t)
	full, err := NewAggregator(sourcesOf(s), 0).GetFullProfile(context.Background(), 10)
	require.NoError(t, err)

	data, err := json.Marshal(full)
	require.NoError(t, err)
	lower := strings.ToLower(string(data))
	assert.NotContains(t, lower, "password")
	assert.NotContains(t, lower, "$2a$10$secret")
}

func TestGetFullProfile_AbsentUser(t *testing.T) {
	agg := NewAggregator(sourcesOf(memory.NewStore()), 0)

	full, err := agg.GetFullProfile(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, full)

	public, err := agg.GetPublicProfile(context.Background(), 999)
	assert.NoError(t, err)
	assert.Nil(t, public)
}

func TestGetFullProfile_UserWithoutContent(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	_, err := s.Users().Create(ctx, &user.User{ID: 4, Username: "new"})
	require.NoError(t, err)

	full, err := NewAggregator(sourcesOf(s), 0).GetFullProfile(ctx, 4)
	require.NoError(t, err)
	assert.Empty(t, full.Skills)
	assert.NotNil(t, full.RecentPosts)
	assert.Nil(t, full.CV)
	assert.Equal(t, Stats{}, full.Stats)
}

func TestGetPublicProfile_IsSubsetOfFull(t *testing.T) {
	s := seedUser10(t)
	agg := NewAggregator(sourcesOf(s), 0)
	ctx := context.Background()

	full, err := agg.GetFullProfile(ctx, 10)
	require.NoError(t, err)
	public, err := agg.GetPublicProfile(ctx, 10)
	require.NoError(t, err)
	require.NotNil(t, public)

	fullJSON := toMap(t, full)
	publicJSON := toMap(t, public)

	fullUser := fullJSON["user"].(map[string]any)
	for k, v := range publicJSON["user"].(map[string]any) {
		assert.Equal(t, fullUser[k], v, "user.%s", k)
	}
	assert.Equal(t, fullJSON["skills"], publicJSON["skills"])
	assert.Equal(t, fullJSON["stats"], publicJSON["stats"])

	fullProjects := fullJSON["projects"].([]any)
	publicProjects := publicJSON["projects"].([]any)
	require.Len(t, publicProjects, len(fullProjects))
	for i, p := range publicProjects {
		pm := p.(map[string]any)
		assert.NotContains(t, pm, "file_path")
		fm := fullProjects[i].(map[string]any)
		for k, v := range pm {
			assert.Equal(t, fm[k], v, "projects[%d].%s", i, k)
		}
	}

	assert.NotContains(t, publicJSON, "recent_posts")
	assert.NotContains(t, publicJSON, "cv")
	assert.NotContains(t, publicJSON["user"], "email")
}

func TestAggregator_IsReadOnly(t *testing.T) {
	s := seedUser10(t)
	agg := NewAggregator(sourcesOf(s), 0)
	before := s.Writes()

	_, err := agg.GetFullProfile(context.Background(), 10)
	require.NoError(t, err)
	_, err = agg.GetPublicProfile(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, before, s.Writes())
}

type brokenCVs struct{ user.CVRepository }

func (brokenCVs) FindByUser(context.Context, int64) (*user.CV, error) {
	return nil, shared.StorageFault("cvs", "FindByUser", fmt.Errorf("timeout"))
}

func TestGetFullProfile_StorageFaultSurfaces(t *testing.T) {
	s := seedUser10(t)
	src := sourcesOf(s)
	src.CVs = brokenCVs{}

	full, err := NewAggregator(src, 0).GetFullProfile(context.Background(), 10)
	assert.Nil(t, full)
	assert.True(t, shared.IsStorageFault(err))
}

func TestFullProfile_PublicOfNil(t *testing.T) {
	var f *FullProfile
	assert.Nil(t, f.Public())
}

func toMap(t *testing.T, v any) map[string]any {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}
