// Package user contains the User aggregate together with the per-user
// records the profile aggregator composes: skills and the CV.
package user

import "time"

// Role tags stored on a user. The access registry resolves these names.
const (
	RoleStudent   = "student"
	RoleProfessor = "professor"
	RoleAdmin     = "admin"
	RoleGuest     = "guest"
)

// User is the persisted account record.
// PasswordHash is owned by the identity layer and is never copied into a
// Profile.
type User struct {
	ID             int64
	Username       string
	Email          string
	PasswordHash   string
	Bio            string
	ProfilePicture string
	FacultyID      int64
	MajorID        int64
	Role           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Profile is the credential-free view of a User.
type Profile struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Bio            string    `json:"bio"`
	ProfilePicture string    `json:"profile_picture"`
	FacultyID      int64     `json:"faculty_id"`
	MajorID        int64     `json:"major_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Profile strips credential fields.
func (u *User) Profile() Profile {
	return Profile{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Bio:            u.Bio,
		ProfilePicture: u.ProfilePicture,
		FacultyID:      u.FacultyID,
		MajorID:        u.MajorID,
		Role:           u.Role,
		CreatedAt:      u.CreatedAt,
	}
}

// Skill is a (user, skill, level) triple. A user may hold many skills and
// no ordering is guaranteed.
type Skill struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Level  string `json:"level"`
}

// CV is the single document record a user may have uploaded.
type CV struct {
	UserID    int64     `json:"user_id"`
	FilePath  string    `json:"file_path"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}
