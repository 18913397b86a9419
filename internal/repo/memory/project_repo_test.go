package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
)

func seed(t *testing.T, r *ProjectRepo) {
	t.Helper()
	ctx := context.Background()
	for _, p := range []*project.Project{
		{ID: "a", ProjectType: "Mobile App", Objectives: "Launch payments", Industry: "Fintech"},
		{ID: "b", ProjectType: "Website", Objectives: "Redesign landing page", Industry: "Retail"},
		{ID: "c", ProjectType: "Data Platform", Objectives: "Unify APP telemetry", Industry: "Gaming"},
	} {
		if err := r.Save(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
}

func ids(ps []*project.Project) string {
	s := ""
	for _, p := range ps {
		s += p.ID
	}
	return s
}

func TestListKeepsCreationOrder(t *testing.T) {
	r := NewProjectRepo()
	seed(t, r)
	ctx := context.Background()

	// re-saving must not move a project
	if err := r.Save(ctx, &project.Project{ID: "a", ProjectType: "Mobile App", Plan: "p"}); err != nil {
		t.Fatal(err)
	}
	got, _ := r.List(ctx)
	if ids(got) != "abc" {
		t.Errorf("List = %s", ids(got))
	}
	if got[0].Plan != "p" {
		t.Errorf("update not stored: %+v", got[0])
	}
}

func TestSearch(t *testing.T) {
	r := NewProjectRepo()
	seed(t, r)
	tests := []struct {
		query string
		want  string
	}{
		{"app", "ac"},
		{"RETAIL", "b"},
		{"payments", "a"},
		{"nothing", ""},
		{"", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got, err := r.Search(context.Background(), tt.query)
			if err != nil {
				t.Fatal(err)
			}
			if got == nil {
				t.Fatal("Search returned nil slice")
			}
			if ids(got) != tt.want {
				t.Errorf("Search(%q) = %s, want %s", tt.query, ids(got), tt.want)
			}
		})
	}
}

func TestGetDeleteCount(t *testing.T) {
	r := NewProjectRepo()
	seed(t, r)
	ctx := context.Background()

	if _, err := r.Get(ctx, "zzz"); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("Get missing = %v", err)
	}
	if err := r.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := r.Delete(ctx, "b"); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("second Delete = %v", err)
	}
	n, _ := r.Count(ctx)
	if n != 2 {
		t.Errorf("Count = %d", n)
	}
	got, _ := r.List(ctx)
	if ids(got) != "ac" {
		t.Errorf("List = %s", ids(got))
	}
}

func TestUpdate(t *testing.T) {
	r := NewProjectRepo()
	seed(t, r)
	ctx := context.Background()

	if err := r.Update(ctx, &project.Project{ID: "b", ProjectType: "Website", Status: project.StatusCompleted}); err != nil {
		t.Fatal(err)
	}
	if got, _ := r.Get(ctx, "b"); got.Status != project.StatusCompleted {
		t.Errorf("Update not stored: %+v", got)
	}

	if err := r.Delete(ctx, "b"); err != nil {
		t.Fatal(err)
	}
	if err := r.Update(ctx, &project.Project{ID: "b", Status: project.StatusFailed}); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("Update deleted = %v", err)
	}
	if _, err := r.Get(ctx, "b"); !errors.Is(err, project.ErrNotFound) {
		t.Errorf("deleted project came back: %v", err)
	}
	got, _ := r.List(ctx)
	if ids(got) != "ac" {
		t.Errorf("List = %s", ids(got))
	}
}

func TestStoresCopies(t *testing.T) {
	r := NewProjectRepo()
	ctx := context.Background()
	p := &project.Project{ID: "x", TeamMembers: []string{"Alice"}}
	_ = r.Save(ctx, p)
	p.TeamMembers[0] = "Mallory"
	p.Plan = "changed"

	got, _ := r.Get(ctx, "x")
	if got.TeamMembers[0] != "Alice" || got.Plan != "" {
		t.Errorf("stored value aliased caller: %+v", got)
	}
	got.Plan = "again"
	again, _ := r.Get(ctx, "x")
	if again.Plan != "" {
		t.Error("returned value aliased store")
	}
}

func TestConcurrentSave(t *testing.T) {
	r := NewProjectRepo()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = r.Save(ctx, &project.Project{ID: fmt.Sprint(i)})
			_, _ = r.List(ctx)
		}(i)
	}
	wg.Wait()
	if n, _ := r.Count(ctx); n != 50 {
		t.Errorf("Count = %d", n)
	}
}
