package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/campus-hub/campus-social/internal/domain/user"
)

// UserRepository implements user.Repository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Find(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) FindAll(_ context.Context) ([]user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

// Create honours a preset ID (used by seeds and tests) and otherwise
// assigns the next one.
func (r *UserRepository) Create(_ context.Context, u *user.User) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u.ID == 0 {
		r.s.nextUserID++
		u.ID = r.s.nextUserID
	} else if u.ID > r.s.nextUserID {
		r.s.nextUserID = u.ID
	}
	now := r.s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	r.s.users[u.ID] = *u
	r.s.writes++
	return u.ID, nil
}

func (r *UserRepository) Update(_ context.Context, u *user.User) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.users[u.ID]
	if !ok {
		return false, nil
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = r.s.now()
	r.s.users[u.ID] = *u
	r.s.writes++
	return true, nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return false, nil
	}
	delete(r.s.users, id)
	delete(r.s.skills, id)
	delete(r.s.cvs, id)
	r.s.writes++
	return true, nil
}

// SkillRepository implements user.SkillRepository.
type SkillRepository struct{ s *Store }

func (r *SkillRepository) FindByUser(_ context.Context, userID int64) ([]user.Skill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]user.Skill, 0, len(r.s.skills[userID]))
	for _, sk := range r.s.skills[userID] {
		out = append(out, sk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *SkillRepository) FindAll(_ context.Context) ([]user.Skill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []user.Skill
	for _, byName := range r.s.skills {
		for _, sk := range byName {
			out = append(out, sk)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *SkillRepository) Create(_ context.Context, sk user.Skill) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byName, ok := r.s.skills[sk.UserID]
	if !ok {
		byName = make(map[string]user.Skill)
		r.s.skills[sk.UserID] = byName
	}
	byName[sk.Name] = sk
	r.s.writes++
	return nil
}

func (r *SkillRepository) Delete(_ context.Context, userID int64, name string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.skills[userID][name]; !ok {
		return false, nil
	}
	delete(r.s.skills[userID], name)
	r.s.writes++
	return true, nil
}

// CVRepository implements user.CVRepository.
type CVRepository struct{ s *Store }

func (r *CVRepository) FindByUser(_ context.Context, userID int64) (*user.CV, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cv, ok := r.s.cvs[userID]
	if !ok {
		return nil, nil
	}
	return &cv, nil
}

func (r *CVRepository) Upsert(_ context.Context, cv *user.CV) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cv.UpdatedAt = r.s.now()
	r.s.cvs[cv.UserID] = *cv
	r.s.writes++
	return nil
}

func (r *CVRepository) Delete(_ context.Context, userID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cvs[userID]; !ok {
		return false, nil
	}
	delete(r.s.cvs, userID)
	r.s.writes++
	return true, nil
}
