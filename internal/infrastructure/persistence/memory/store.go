// Package memory implements the repository interfaces on in-process maps.
// It backs tests and local runs without a database. All repositories of a
// Store share one lock, so every operation is atomic with respect to the
// others.
package memory

import (
	"sync"
	"time"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/user"
)

// Store holds all entity tables.
type Store struct {
	mu sync.RWMutex

	users        map[int64]user.User
	skills       map[int64]map[string]user.Skill
	cvs          map[int64]user.CV
	projects     map[int64]project.Project
	posts        map[int64]post.Post
	interactions map[post.Key]post.Interaction

	nextUserID    int64
	nextProjectID int64
	nextPostID    int64

	writes int64
	now    func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:        make(map[int64]user.User),
		skills:       make(map[int64]map[string]user.Skill),
		cvs:          make(map[int64]user.CV),
		projects:     make(map[int64]project.Project),
		posts:        make(map[int64]post.Post),
		interactions: make(map[post.Key]post.Interaction),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository.
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Skills returns the skill repository.
func (s *Store) Skills() *SkillRepository { return &SkillRepository{s: s} }

// CVs returns the CV repository.
func (s *Store) CVs() *CVRepository { return &CVRepository{s: s} }

// Projects returns the project repository.
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }

// Posts returns the post repository.
func (s *Store) Posts() *PostRepository { return &PostRepository{s: s} }

// Interactions returns the interaction ledger.
func (s *Store) Interactions() *InteractionRepository { return &InteractionRepository{s: s} }

// Writes returns how many mutating operations the store has applied.
func (s *Store) Writes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

var (
	_ user.Repository            = (*UserRepository)(nil)
	_ user.SkillRepository       = (*SkillRepository)(nil)
	_ user.CVRepository          = (*CVRepository)(nil)
	_ project.Repository         = (*ProjectRepository)(nil)
	_ post.Repository            = (*PostRepository)(nil)
	_ post.InteractionRepository = (*InteractionRepository)(nil)
)
