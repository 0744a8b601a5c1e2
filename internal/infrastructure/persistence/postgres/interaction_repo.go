package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// InteractionRepository implements post.InteractionRepository on the
// post_interactions table.
type InteractionRepository struct {
	q       Querier
	timeout time.Duration
}

// NewInteractionRepository creates a new InteractionRepository.
func NewInteractionRepository(conn *Connection) *InteractionRepository {
	return &InteractionRepository{q: conn, timeout: conn.QueryTimeout()}
}

var _ post.InteractionRepository = (*InteractionRepository)(nil)

// toggleSQL flips a ledger row in one statement. The DELETE and the INSERT
// see the same snapshot: when a row was removed the INSERT is skipped, when
// none was removed the INSERT runs and a concurrent insert of the same key
// is absorbed by ON CONFLICT. The result is whether a row exists afterwards.
const toggleSQL = `
	WITH removed AS (
		DELETE FROM post_interactions
		WHERE post_id = $1 AND user_id = $2 AND type = $3
		RETURNING 1
	), inserted AS (
		INSERT INTO post_interactions (post_id, user_id, type)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT (post_id, user_id, type) DO NOTHING
		RETURNING 1
	)
	SELECT NOT EXISTS (SELECT 1 FROM removed)
`

// Toggle creates or removes the row for key atomically. A post or user
// deleted since the caller's precondition check trips the foreign key and
// is reported as shared.ErrNotAllowed.
func (r *InteractionRepository) Toggle(ctx context.Context, key post.Key) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var active bool
	err := r.q.QueryRow(ctx, toggleSQL, key.PostID, key.UserID, key.Type.String()).Scan(&active)
	if IsForeignKeyViolation(err) {
		return false, shared.NewDomainError("post_interactions", "Toggle", shared.ErrNotAllowed,
			fmt.Sprintf("post %d or user %d does not exist", key.PostID, key.UserID))
	}
	if err != nil {
		return false, shared.StorageFault("post_interactions", "Toggle", err)
	}
	return active, nil
}

func (r *InteractionRepository) Exists(ctx context.Context, key post.Key) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var exists bool
	err := r.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM post_interactions WHERE post_id = $1 AND user_id = $2 AND type = $3
		)
	`, key.PostID, key.UserID, key.Type.String()).Scan(&exists)
	if err != nil {
		return false, shared.StorageFault("post_interactions", "Exists", err)
	}
	return exists, nil
}

func (r *InteractionRepository) CountByPost(ctx context.Context, postID int64) (map[post.InteractionType]int, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx,
		`SELECT type, count(*) FROM post_interactions WHERE post_id = $1 GROUP BY type`, postID)
	if err != nil {
		return nil, shared.StorageFault("post_interactions", "CountByPost", err)
	}
	defer rows.Close()

	counts := make(map[post.InteractionType]int)
	for rows.Next() {
		var t string
		var n int
		if err := rows.Scan(&t, &n); err != nil {
			return nil, shared.StorageFault("post_interactions", "CountByPost", err)
		}
		counts[post.InteractionType(t)] = n
	}
	return counts, shared.StorageFault("post_interactions", "CountByPost", rows.Err())
}

func (r *InteractionRepository) FindByUser(ctx context.Context, userID int64, t post.InteractionType) ([]post.Interaction, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx, `
		SELECT post_id, user_id, type, created_at FROM post_interactions
		WHERE user_id = $1 AND type = $2
		ORDER BY created_at DESC, post_id DESC
	`, userID, t.String())
	if err != nil {
		return nil, shared.StorageFault("post_interactions", "FindByUser", err)
	}
	defer rows.Close()

	out := []post.Interaction{}
	for rows.Next() {
		var in post.Interaction
		var typ string
		if err := rows.Scan(&in.PostID, &in.UserID, &typ, &in.CreatedAt); err != nil {
			return nil, shared.StorageFault("post_interactions", "FindByUser", err)
		}
		in.Type = post.InteractionType(typ)
		out = append(out, in)
	}
	return out, shared.StorageFault("post_interactions", "FindByUser", rows.Err())
}
