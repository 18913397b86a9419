package project

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("project not found")
	// ErrDeleted reports that a project was removed while its pipeline ran.
	ErrDeleted = errors.New("project deleted during generation")
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	// StatusDeleted only appears in stream events; deleted projects are not stored.
	StatusDeleted = "deleted"
)

type Project struct {
	ID           string
	ProjectType  string
	Objectives   string
	Industry     string
	TeamMembers  []string
	Requirements []string
	Plan         string
	Schedule     string
	Review       string
	HTMLOutput   string
	Status       string
	Error        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository stores projects. Save inserts or replaces; Update, Get and Delete
// return ErrNotFound for unknown ids;
// List and Search return projects in creation order.
type Repository interface {
	Save(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]*Project, error)
	Search(ctx context.Context, query string) ([]*Project, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	Name() string
}
