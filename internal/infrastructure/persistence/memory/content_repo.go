package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/campus-hub/campus-social/internal/domain/post"
	"github.com/campus-hub/campus-social/internal/domain/project"
	"github.com/campus-hub/campus-social/internal/domain/shared"
)

// ProjectRepository implements project.Repository.
type ProjectRepository struct{ s *Store }

func cloneProject(p project.Project) project.Project {
	p.Skills = append([]string(nil), p.Skills...)
	return p
}

func (r *ProjectRepository) Find(_ context.Context, id int64) (*project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, nil
	}
	p = cloneProject(p)
	return &p, nil
}

func (r *ProjectRepository) FindAll(_ context.Context) ([]project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]project.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProjectRepository) FindByOwner(_ context.Context, ownerID int64) ([]project.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []project.Project{}
	for _, p := range r.s.projects {
		if p.OwnerID == ownerID {
			out = append(out, cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *ProjectRepository) Create(_ context.Context, p *project.Project) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == 0 {
		r.s.nextProjectID++
		p.ID = r.s.nextProjectID
	} else if p.ID > r.s.nextProjectID {
		r.s.nextProjectID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
	}
	r.s.projects[p.ID] = cloneProject(*p)
	r.s.writes++
	return p.ID, nil
}

func (r *ProjectRepository) Update(_ context.Context, p *project.Project) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.projects[p.ID]
	if !ok {
		return false, nil
	}
	p.CreatedAt = existing.CreatedAt
	r.s.projects[p.ID] = cloneProject(*p)
	r.s.writes++
	return true, nil
}

func (r *ProjectRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[id]; !ok {
		return false, nil
	}
	delete(r.s.projects, id)
	r.s.writes++
	return true, nil
}

// PostRepository implements post.Repository.
type PostRepository struct{ s *Store }

func (r *PostRepository) Find(_ context.Context, id int64) (*post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PostRepository) FindAll(_ context.Context) ([]post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]post.Post, 0, len(r.s.posts))
	for _, p := range r.s.posts {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindRecentByAuthor returns at most limit posts, newest first. Ties on
// CreatedAt are broken by descending ID.
func (r *PostRepository) FindRecentByAuthor(_ context.Context, authorID int64, limit int) ([]post.Post, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []post.Post{}
	for _, p := range r.s.posts {
		if p.AuthorID == authorID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *PostRepository) CountByAuthor(_ context.Context, authorID int64) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, p := range r.s.posts {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *PostRepository) Create(_ context.Context, p *post.Post) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if p.ID == 0 {
		r.s.nextPostID++
		p.ID = r.s.nextPostID
	} else if p.ID > r.s.nextPostID {
		r.s.nextPostID = p.ID
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now()
	}
	r.s.posts[p.ID] = *p
	r.s.writes++
	return p.ID, nil
}

func (r *PostRepository) Update(_ context.Context, p *post.Post) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.posts[p.ID]
	if !ok {
		return false, nil
	}
	p.CreatedAt = existing.CreatedAt
	r.s.posts[p.ID] = *p
	r.s.writes++
	return true, nil
}

// Delete removes the post together with its interactions.
func (r *PostRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[id]; !ok {
		return false, nil
	}
	delete(r.s.posts, id)
	for k := range r.s.interactions {
		if k.PostID == id {
			delete(r.s.interactions, k)
		}
	}
	r.s.writes++
	return true, nil
}

// InteractionRepository implements post.InteractionRepository.
type InteractionRepository struct{ s *Store }

// Toggle removes the interaction if it exists, otherwise records it. The
// check and the write happen under one lock. A post that no longer exists
// fails with shared.ErrNotAllowed and nothing is written.
func (r *InteractionRepository) Toggle(_ context.Context, key post.Key) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[key.PostID]; !ok {
		return false, shared.NewDomainError("memory", "Toggle", shared.ErrNotAllowed,
			fmt.Sprintf("post %d does not exist", key.PostID))
	}

	r.s.writes++
	if _, ok := r.s.interactions[key]; ok {
		delete(r.s.interactions, key)
		return false, nil
	}
	r.s.interactions[key] = post.Interaction{
		PostID:    key.PostID,
		UserID:    key.UserID,
		Type:      key.Type,
		CreatedAt: r.s.now(),
	}
	return true, nil
}

func (r *InteractionRepository) Exists(_ context.Context, key post.Key) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.interactions[key]
	return ok, nil
}

func (r *InteractionRepository) CountByPost(_ context.Context, postID int64) (map[post.InteractionType]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[post.InteractionType]int)
	for k := range r.s.interactions {
		if k.PostID == postID {
			counts[k.Type]++
		}
	}
	return counts, nil
}

func (r *InteractionRepository) FindByUser(_ context.Context, userID int64, t post.InteractionType) ([]post.Interaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []post.Interaction{}
	for k, in := range r.s.interactions {
		if k.UserID == userID && k.Type == t {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].PostID > out[j].PostID
	})
	return out, nil
}
