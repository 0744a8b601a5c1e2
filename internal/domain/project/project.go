// Package project contains student projects shown on profiles.
package project

import (
	"context"
	"time"
)

// Project is an uploaded piece of work. FilePath points into private
// storage and must not appear in public projections.
type Project struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"created_at"`
}

// Public is a Project without its storage location.
type Public struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Skills      []string  `json:"skills"`
	CreatedAt   time.Time `json:"created_at"`
}

// Public drops FilePath.
func (p Project) Public() Public {
	skills := make([]string, len(p.Skills))
	copy(skills, p.Skills)
	return Public{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		Title:       p.Title,
		Description: p.Description,
		Skills:      skills,
		CreatedAt:   p.CreatedAt,
	}
}

// Repository is the CRUD boundary for projects. Absence is a nil result.
type Repository interface {
	Find(ctx context.Context, id int64) (*Project, error)
	FindAll(ctx context.Context) ([]Project, error)

	// FindByOwner returns all projects of a user, oldest first.
	FindByOwner(ctx context.Context, ownerID int64) ([]Project, error)

	Create(ctx context.Context, p *Project) (int64, error)
	Update(ctx context.Context, p *Project) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}
