package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
)

type ProjectRepo struct {
	mu    sync.RWMutex
	m     map[string]*project.Project
	order []string
}

func NewProjectRepo() *ProjectRepo {
	return &ProjectRepo{m: map[string]*project.Project{}}
}

func (r *ProjectRepo) Name() string { return "in-memory" }

func (r *ProjectRepo) Save(_ context.Context, p *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.m[p.ID] = clone(p)
	return nil
}

// Update replaces a stored project; it never resurrects a deleted one.
func (r *ProjectRepo) Update(_ context.Context, p *project.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[p.ID]; !ok {
		return project.ErrNotFound
	}
	r.m[p.ID] = clone(p)
	return nil
}

func (r *ProjectRepo) Get(_ context.Context, id string) (*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, project.ErrNotFound
	}
	return clone(p), nil
}

func (r *ProjectRepo) List(_ context.Context) ([]*project.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*project.Project, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.m[id]))
	}
	return out, nil
}

func (r *ProjectRepo) Search(_ context.Context, query string) ([]*project.Project, error) {
	q := strings.ToLower(query)
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []*project.Project{}
	for _, id := range r.order {
		p := r.m[id]
		if strings.Contains(strings.ToLower(p.Objectives), q) ||
			strings.Contains(strings.ToLower(p.ProjectType), q) ||
			strings.Contains(strings.ToLower(p.Industry), q) {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *ProjectRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return project.ErrNotFound
	}
	delete(r.m, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ProjectRepo) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.m)), nil
}

func clone(p *project.Project) *project.Project {
	c := *p
	c.TeamMembers = append([]string(nil), p.TeamMembers...)
	c.Requirements = append([]string(nil), p.Requirements...)
	return &c
}
