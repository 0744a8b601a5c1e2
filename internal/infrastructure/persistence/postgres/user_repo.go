package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/campus-social/internal/domain/shared"
	"github.com/campus-hub/campus-social/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	q       Querier
	timeout time.Duration
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{q: conn, timeout: conn.QueryTimeout()}
}

var _ user.Repository = (*UserRepository)(nil)

const userColumns = `id, username, email, password_hash, bio, profile_picture,
	faculty_id, major_id, role, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Bio, &u.ProfilePicture,
		&u.FacultyID, &u.MajorID, &u.Role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Find returns a user by ID or nil.
func (r *UserRepository) Find(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if IsNoRows(err) {
		return nil, nil
	}
	return u, shared.StorageFault("users", "Find", err)
}

// FindAll returns every user ordered by ID.
func (r *UserRepository) FindAll(ctx context.Context) ([]user.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, shared.StorageFault("users", "FindAll", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, shared.StorageFault("users", "FindAll", err)
		}
		users = append(users, *u)
	}
	return users, shared.StorageFault("users", "FindAll", rows.Err())
}

// FindByEmail returns a user by case-insensitive email or nil.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	u, err := scanUser(r.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email))
	if IsNoRows(err) {
		return nil, nil
	}
	return u, shared.StorageFault("users", "FindByEmail", err)
}

// Create inserts the user and sets its ID and timestamps.
func (r *UserRepository) Create(ctx context.Context, u *user.User) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO users (username, email, password_hash, bio, profile_picture, faculty_id, major_id, role)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.q.QueryRow(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Bio, u.ProfilePicture,
		u.FacultyID, u.MajorID, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return 0, shared.WrapError("users", "Create", shared.ErrInvalidInput, "username or email already taken", err)
		}
		return 0, shared.StorageFault("users", "Create", err)
	}
	return u.ID, nil
}

// Update replaces the mutable columns.
func (r *UserRepository) Update(ctx context.Context, u *user.User) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		UPDATE users SET
			username = $1,
			email = $2,
			password_hash = $3,
			bio = $4,
			profile_picture = $5,
			faculty_id = $6,
			major_id = $7,
			role = $8,
			updated_at = NOW()
		WHERE id = $9
	`
	tag, err := r.q.Exec(ctx, query,
		u.Username, u.Email, u.PasswordHash, u.Bio, u.ProfilePicture,
		u.FacultyID, u.MajorID, u.Role, u.ID,
	)
	if err != nil {
		return false, shared.StorageFault("users", "Update", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the user; skills, CV, projects and posts cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, shared.StorageFault("users", "Delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILL REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// SkillRepository implements user.SkillRepository.
type SkillRepository struct {
	q       Querier
	timeout time.Duration
}

// NewSkillRepository creates a new SkillRepository.
func NewSkillRepository(conn *Connection) *SkillRepository {
	return &SkillRepository{q: conn, timeout: conn.QueryTimeout()}
}

var _ user.SkillRepository = (*SkillRepository)(nil)

func (r *SkillRepository) list(ctx context.Context, op, query string, args ...any) ([]user.Skill, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, shared.StorageFault("skills", op, err)
	}
	defer rows.Close()

	skills := []user.Skill{}
	for rows.Next() {
		var s user.Skill
		if err := rows.Scan(&s.UserID, &s.Name, &s.Level); err != nil {
			return nil, shared.StorageFault("skills", op, err)
		}
		skills = append(skills, s)
	}
	return skills, shared.StorageFault("skills", op, rows.Err())
}

func (r *SkillRepository) FindByUser(ctx context.Context, userID int64) ([]user.Skill, error) {
	return r.list(ctx, "FindByUser",
		`SELECT user_id, name, level FROM skills WHERE user_id = $1 ORDER BY name`, userID)
}

func (r *SkillRepository) FindAll(ctx context.Context) ([]user.Skill, error) {
	return r.list(ctx, "FindAll", `SELECT user_id, name, level FROM skills ORDER BY user_id, name`)
}

// Create adds the skill or updates its level.
func (r *SkillRepository) Create(ctx context.Context, s user.Skill) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	_, err := r.q.Exec(ctx, `
		INSERT INTO skills (user_id, name, level) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, name) DO UPDATE SET level = EXCLUDED.level
	`, s.UserID, s.Name, s.Level)
	return shared.StorageFault("skills", "Create", err)
}

func (r *SkillRepository) Delete(ctx context.Context, userID int64, name string) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM skills WHERE user_id = $1 AND name = $2`, userID, name)
	if err != nil {
		return false, shared.StorageFault("skills", "Delete", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CV REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// CVRepository implements user.CVRepository.
type CVRepository struct {
	q       Querier
	timeout time.Duration
}

// NewCVRepository creates a new CVRepository.
func NewCVRepository(conn *Connection) *CVRepository {
	return &CVRepository{q: conn, timeout: conn.QueryTimeout()}
}

var _ user.CVRepository = (*CVRepository)(nil)

func (r *CVRepository) FindByUser(ctx context.Context, userID int64) (*user.CV, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var cv user.CV
	err := r.q.QueryRow(ctx,
		`SELECT user_id, file_path, summary, updated_at FROM cvs WHERE user_id = $1`, userID,
	).Scan(&cv.UserID, &cv.FilePath, &cv.Summary, &cv.UpdatedAt)
	if IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, shared.StorageFault("cvs", "FindByUser", err)
	}
	return &cv, nil
}

func (r *CVRepository) Upsert(ctx context.Context, cv *user.CV) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	err := r.q.QueryRow(ctx, `
		INSERT INTO cvs (user_id, file_path, summary, updated_at) VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			file_path = EXCLUDED.file_path,
			summary = EXCLUDED.summary,
			updated_at = NOW()
		RETURNING updated_at
	`, cv.UserID, cv.FilePath, cv.Summary).Scan(&cv.UpdatedAt)
	return shared.StorageFault("cvs", "Upsert", err)
}

func (r *CVRepository) Delete(ctx context.Context, userID int64) (bool, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.q.Exec(ctx, `DELETE FROM cvs WHERE user_id = $1`, userID)
	if err != nil {
		return false, shared.StorageFault("cvs", "Delete", err)
	}
	return tag.RowsAffected() > 0, nil
}
