package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/internal/domain/user"
)

// testConnection connects to DATABASE_URL and applies the migrations. The
// test is skipped when no database is configured.
func testConnection(t *testing.T) *Connection {
	t.Helper()

	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.URL = url

	conn, err := NewConnection(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	_, err = NewMigrator(conn).Migrate(ctx)
	require.NoError(t, err)
	return conn
}

// authorWithPost creates a throwaway user and one post by them. Both are
// removed when the test ends.
func authorWithPost(t *testing.T, conn *Connection) (userID, postID int64) {
	t.Helper()
	ctx := context.Background()

	suffix := uuid.NewString()[:8]
	users := NewUserRepository(conn)
	userID, err := users.Create(ctx, &user.User{
		Username: "toggle-" + suffix,
		Email:    "toggle-" + suffix + "@campus.test",
		Role:     user.RoleStudent,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = users.Delete(context.Background(), userID) })

	postID, err = NewPostRepository(conn).Create(ctx, &post.Post{AuthorID: userID, Content: "hello"})
	require.NoError(t, err)
	return userID, postID
}

func TestInteractionRepository_ToggleRoundTripOnDatabase(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()
	userID, postID := authorWithPost(t, conn)
	repo := NewInteractionRepository(conn)
	key := post.Key{PostID: postID, UserID: userID, Type: post.InteractionLike}

	active, err := repo.Toggle(ctx, key)
	require.NoError(t, err)
	assert.True(t, active)

	counts, err := repo.CountByPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, map[post.InteractionType]int{post.InteractionLike: 1}, counts)

	active, err = repo.Toggle(ctx, key)
	require.NoError(t, err)
	assert.False(t, active)

	exists, err := repo.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

// Two transactions toggle the same absent key. The second statement starts
// while the first insert is uncommitted, so it must wait on the unique index
// and then resolve to "active" without adding or removing a row.
func TestInteractionRepository_OverlappingTogglesLeaveOneRow(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()
	userID, postID := authorWithPost(t, conn)
	key := post.Key{PostID: postID, UserID: userID, Type: post.InteractionSave}
	txOpts := pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

	tx1, err := conn.pool.BeginTx(ctx, txOpts)
	require.NoError(t, err)
	defer func() { _ = tx1.Rollback(ctx) }()
	tx2, err := conn.pool.BeginTx(ctx, txOpts)
	require.NoError(t, err)
	defer func() { _ = tx2.Rollback(ctx) }()

	var pid2 int32
	require.NoError(t, tx2.QueryRow(ctx, "SELECT pg_backend_pid()").Scan(&pid2))

	first := &InteractionRepository{q: tx1, timeout: 5 * time.Second}
	second := &InteractionRepository{q: tx2, timeout: 5 * time.Second}

	active1, err := first.Toggle(ctx, key)
	require.NoError(t, err)
	assert.True(t, active1)

	type result struct {
		active bool
		err    error
	}
	done := make(chan result, 1)
	go func() {
		active, err := second.Toggle(ctx, key)
		done <- result{active, err}
	}()

	require.Eventually(t, func() bool {
		var waiting bool
		err := conn.QueryRow(ctx,
			`SELECT COALESCE(wait_event_type, '') = 'Lock' FROM pg_stat_activity WHERE pid = $1`, pid2,
		).Scan(&waiting)
		return err == nil && waiting
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, tx1.Commit(ctx))
	res := <-done
	require.NoError(t, res.err)
	assert.True(t, res.active)
	require.NoError(t, tx2.Commit(ctx))

	counts, err := NewInteractionRepository(conn).CountByPost(ctx, postID)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[post.InteractionSave])
}

func TestInteractionRepository_ToggleOnDeletedPostIsNotAllowed(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()
	userID, postID := authorWithPost(t, conn)

	deleted, err := NewPostRepository(conn).Delete(ctx, postID)
	require.NoError(t, err)
	require.True(t, deleted)

	repo := NewInteractionRepository(conn)
	active, err := repo.Toggle(ctx, post.Key{PostID: postID, UserID: userID, Type: post.InteractionLike})
	assert.False(t, active)
	assert.ErrorIs(t, err, shared.ErrNotAllowed)
	assert.False(t, shared.IsStorageFault(err))

	counts, err := repo.CountByPost(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestConnection_HealthAndSchemaStatus(t *testing.T) {
	conn := testConnection(t)
	ctx := context.Background()

	health, err := conn.Health(ctx)
	require.NoError(t, err)
	assert.True(t, health.Healthy)
	assert.Equal(t, DefaultConfig().MaxConns, health.MaxConns)

	status, err := NewMigrator(conn).Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, len(Migrations()))
	for _, m := range status {
		assert.True(t, m.IsApplied, "migration %d", m.Version)
	}
}
