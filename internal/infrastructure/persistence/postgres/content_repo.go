package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// ProjectRepository implements project.Repository for PostgreSQL.
type ProjectRepository struct {
	q       Querier
	timeout time.Duration
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(conn *Connection) *ProjectRepository {
	return &ProjectRepository{q: conn, timeout: conn.QueryTimeout()}
}

var _ project.Repository = (*ProjectRepository)(nil)

const projectColumns = `id, owner_id, title, description, file_path, skills, created_at`

func scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	if err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.FilePath, &p.Skills, &p.CreatedAt); err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = []string{}
	}
	return &p, nil
}

func (r *ProjectRepository) list(ctx context.Context, op, query string, args ...any) ([]project.Project, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StorageFault("projects", op, err)
	}
	defer rows.Close()

	projects := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, shared.StorageFault("projects", op, err)
		}
		projects = append(projects, *p)
	}
	return projects, shared.StorageFault("projects", op, rows.Err())
}

func (r *ProjectRepository) Find(ctx context.Context, id int64) (*project.Project, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanProject(r.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if IsNoRows(err) {
		return nil, nil
	}
	return p, shared.StorageFault("projects", "Find", err)
}

func (r *ProjectRepository) FindAll(ctx context.Context) ([]project.Project, error) {
	return r.list(ctx, "FindAll", `SELECT `+projectColumns+` FROM projects ORDER BY id`)
}

func (r *ProjectRepository) FindByOwner(ctx context.Context, ownerID int64) ([]project.Project, error) {
	return r.list(ctx, "FindByOwner",
		`SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY id`, ownerID)
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	skills := p.Skills
	if skills == nil {
		skills = []string{}
	}
	err := r.q.QueryRow(ctx, `
		INSERT INTO projects (owner_id, title, description, file_path, skills)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, p.OwnerID, p.Title, p.Description, p.FilePath, skills).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return 0, shared.StorageFault("projects", "Create", err)
	}
	return p.ID, nil
}

func (r *ProjectRepository) Update(ctx context.Context, p *project.Project) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `
		UPDATE projects SET title = $1, description = $2, file_path = $3, skills = $4
		WHERE id = $5
	`, p.Title, p.Description, p.FilePath, p.Skills, p.ID)
	if err != nil {
		return false, shared.StorageFault("projects", "Update", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, shared.StorageFault("projects", "Delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// POST REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// PostRepository implements post.Repository for PostgreSQL.
type PostRepository struct {
	q       Querier
	timeout time.Duration
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(conn *Connection) *PostRepository {
	return &PostRepository{q: conn, timeout: conn.QueryTimeout()}
}

var _ post.Repository = (*PostRepository)(nil)

const postColumns = `id, author_id, content, category, created_at`

func scanPost(row pgx.Row) (*post.Post, error) {
	var p post.Post
	if err := row.Scan(&p.ID, &p.AuthorID, &p.Content, &p.Category, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) list(ctx context.Context, op, query string, args ...any) ([]post.Post, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StorageFault("posts", op, err)
	}
	defer rows.Close()

	posts := []post.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, shared.StorageFault("posts", op, err)
		}
		posts = append(posts, *p)
	}
	return posts, shared.StorageFault("posts", op, rows.Err())
}

func (r *PostRepository) Find(ctx context.Context, id int64) (*post.Post, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	p, err := scanPost(r.q.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
	if IsNoRows(err) {
		return nil, nil
	}
	return p, shared.StorageFault("posts", "Find", err)
}

func (r *PostRepository) FindAll(ctx context.Context) ([]post.Post, error) {
	return r.list(ctx, "FindAll", `SELECT `+postColumns+` FROM posts ORDER BY id`)
}

// FindRecentByAuthor returns the newest posts first; ties break on ID.
func (r *PostRepository) FindRecentByAuthor(ctx context.Context, authorID int64, limit int) ([]post.Post, error) {
	return r.list(ctx, "FindRecentByAuthor", `
		SELECT `+postColumns+` FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, authorID, limit)
}

func (r *PostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM posts WHERE author_id = $1`, authorID).Scan(&n)
	if err != nil {
		return 0, shared.StorageFault("posts", "CountByAuthor", err)
	}
	return n, nil
}

func (r *PostRepository) Create(ctx context.Context, p *post.Post) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.q.QueryRow(ctx, `
		INSERT INTO posts (author_id, content, category)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.AuthorID, p.Content, p.Category).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return 0, shared.StorageFault("posts", "Create", err)
	}
	return p.ID, nil
}

func (r *PostRepository) Update(ctx context.Context, p *post.Post) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `UPDATE posts SET content = $1, category = $2 WHERE id = $3`,
		p.Content, p.Category, p.ID)
	if err != nil {
		return false, shared.StorageFault("posts", "Update", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the post; its interactions cascade.
func (r *PostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, shared.StorageFault("posts", "Delete", err)
	}
	return tag.RowsAffected() > 0, nil
}
