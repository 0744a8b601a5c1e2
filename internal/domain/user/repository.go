package user

import "context"

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Implementations live in infrastructure/persistence.
//
// Absence is reported as a nil record (or false), never as an error.
// Errors are reserved for storage faults and wrap shared.ErrStorageFault.
// ══════════════════════════════════════════════════════════════════════════════

// Repository is the CRUD boundary for users.
type Repository interface {
	// Find returns the user or nil when no such user exists.
	Find(ctx context.Context, id int64) (*User, error)

	// FindAll returns every user ordered by ID.
	FindAll(ctx context.Context) ([]User, error)

	// FindByEmail returns the user with the given email or nil.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserts the user and returns the assigned ID.
	Create(ctx context.Context, u *User) (int64, error)

	// Update replaces the mutable fields. Returns false if the user is absent.
	Update(ctx context.Context, u *User) (bool, error)

	// Delete removes the user. Returns false if the user is absent.
	Delete(ctx context.Context, id int64) (bool, error)
}

// SkillRepository stores user skills.
//
// A skill has no ID of its own: it is keyed by (UserID, Name). That key
// replaces the usual Find/Update pair. FindByUser is the lookup, since a
// user's skills are always read together, and Create is an upsert, so
// creating an existing (user, name) pair updates its level in place.
type SkillRepository interface {
	// FindByUser returns a user's skills ordered by name.
	FindByUser(ctx context.Context, userID int64) ([]Skill, error)
	FindAll(ctx context.Context) ([]Skill, error)

	// Create inserts the skill or, when the user already has one with the
	// same name, replaces its level.
	Create(ctx context.Context, s Skill) error

	// Delete removes the (user, name) skill. Returns false if it is absent.
	Delete(ctx context.Context, userID int64, name string) (bool, error)
}

// CVRepository stores the one-per-user CV record.
type CVRepository interface {
	// FindByUser returns the CV or nil when the user has none.
	FindByUser(ctx context.Context, userID int64) (*CV, error)

	// Upsert creates or replaces the user's CV.
	Upsert(ctx context.Context, cv *CV) error

	Delete(ctx context.Context, userID int64) (bool, error)
}
