package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campus-hub/campus-social/config"
	"github.com/campus-hub/campus-social/internal/application/platform"
	"github.com/campus-hub/campus-social/internal/domain/user"
	"github.com/campus-hub/campus-social/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "campus-social", Environment: config.EnvDevelopment},
		Interactions: config.InteractionsConfig{
			AllowSelfLike:   true,
			AllowSelfLove:   true,
			AllowSelfSave:   false,
			RecentPostLimit: 5,
		},
		Observability: config.ObservabilityConfig{MetricsEnabled: true},
	}
}

func TestSeedDemo_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memoryStore()
	log := logger.Discard()

	first, err := seedDemo(ctx, store.Repos, log)
	require.NoError(t, err)
	second, err := seedDemo(ctx, store.Repos, log)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	users, err := store.Users.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(demoAccounts))

	posts, err := store.Posts.CountByAuthor(ctx, first.ProfessorID)
	require.NoError(t, err)
	assert.Equal(t, 2, posts)
}

func TestSeedDemo_HashesPasswords(t *testing.T) {
	ctx := context.Background()
	store := memoryStore()

	demo, err := seedDemo(ctx, store.Repos, logger.Discard())
	require.NoError(t, err)

	u, err := store.Users.Find(ctx, demo.StudentID)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEqual(t, demoPassword, u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(demoPassword)))
}

func TestBuildApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	store := memoryStore()
	log := logger.Discard()

	app, err := buildApp(ctx, cfg, store, log)
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.Counter)

	demo, err := seedDemo(ctx, store.Repos, log)
	require.NoError(t, err)

	require.NoError(t, exercise(logger.WithContext(ctx, log), app, demo))

	counts, err := app.ReactionCounts(ctx, demo.PostID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"like": 1}, counts)

	snap := app.Mediator.Metrics().Snapshot()
	// reaction, denial, profile view
	assert.Equal(t, int64(3), snap.TotalNotified)
	assert.Zero(t, snap.TotalReactorFailures)
}

func TestBuildApp_AppliesSelfReactionSetting(t *testing.T) {
	ctx := context.Background()
	store := memoryStore()

	app, err := buildApp(ctx, testConfig(), store, logger.Discard())
	require.NoError(t, err)

	demo, err := seedDemo(ctx, store.Repos, logger.Discard())
	require.NoError(t, err)

	professor := platform.Identity{UserID: demo.ProfessorID, Role: user.RoleProfessor}

	_, err = app.Service.React(ctx, professor, "save", demo.PostID)
	assert.Error(t, err)

	res, err := app.Service.React(ctx, professor, "like", demo.PostID)
	require.NoError(t, err)
	assert.True(t, res.Active)
}

func TestExercise_LogsThroughContextLogger(t *testing.T) {
	ctx := context.Background()
	store := memoryStore()

	app, err := buildApp(ctx, testConfig(), store, logger.Discard())
	require.NoError(t, err)
	defer app.Close()

	demo, err := seedDemo(ctx, store.Repos, logger.Discard())
	require.NoError(t, err)

	var buf bytes.Buffer
	log := logger.New(logger.Options{Output: &buf, Level: slog.LevelInfo, Format: logger.FormatJSON})

	require.NoError(t, exercise(logger.WithContext(ctx, log), app, demo))

	out := buf.String()
	assert.Contains(t, out, `"msg":"reaction toggled"`)
	assert.Contains(t, out, `"msg":"guest reaction refused"`)
	assert.Contains(t, out, `"msg":"seed completed"`)
}

func TestRollbackSchema_RequiresDatabase(t *testing.T) {
	err := rollbackSchema(context.Background(), testConfig(), logger.Discard())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}
