package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/workflow"
	"github.com/steveyiyo/project-scheduling-backend/pkg/types"
)

// Publisher receives stage events for a project, typically the websocket hub.
type Publisher interface {
	Broadcast(projectID string, v any)
}

type Service struct {
	Repo     Repository
	Workflow *workflow.Workflow
	Events   Publisher
	Timeout  time.Duration
	Logger   *slog.Logger

	wg   sync.WaitGroup
	bg   context.Context
	stop context.CancelFunc
	now  func() time.Time
}

func NewService(repo Repository, wf *workflow.Workflow, events Publisher, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	bg, stop := context.WithCancel(context.Background())
	return &Service{
		Repo:     repo,
		Workflow: wf,
		Events:   events,
		Timeout:  timeout,
		Logger:   logger,
		bg:       bg,
		stop:     stop,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in types.ProjectInput) (*Project, error) {
	now := s.now()
	p := &Project{
		ID:           uuid.NewString(),
		ProjectType:  in.ProjectType,
		Objectives:   in.Objectives,
		Industry:     in.Industry,
		TeamMembers:  nonNil(in.TeamMembers),
		Requirements: nonNil(in.Requirements),
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return p, nil
}

func (s *Service) UpdateResults(ctx context.Context, id string, st workflow.State) (*Project, error) {
	p, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Plan = st.Plan
	p.Schedule = st.Schedule
	p.Review = st.Review
	p.HTMLOutput = st.HTMLOutput
	p.Status = StatusCompleted
	p.Error = ""
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]*Project, error) {
	return s.Repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Project, error) {
	return s.Repo.Search(ctx, query)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.Repo.Count(ctx)
}

func (s *Service) StorageName() string {
	return s.Repo.Name()
}

// Generate creates the project and runs the pipeline for it before returning.
func (s *Service) Generate(ctx context.Context, in types.ProjectInput) (*Project, error) {
	p, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, p, in)
}

// GenerateAsync creates the project and runs the pipeline in the background.
// The returned project is still pending; progress is published to Events.
func (s *Service) GenerateAsync(ctx context.Context, in types.ProjectInput) (*Project, error) {
	p, err := s.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	snapshot := *p
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if _, err := s.run(s.bg, p, in); err != nil {
			s.Logger.Error("background generation failed", "project_id", p.ID, "error", err)
		}
	}()
	return &snapshot, nil
}

// Wait blocks until background generations finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Shutdown waits for background generations. If ctx ends first the runs are
// cancelled, their failure is recorded and ctx.Err is returned.
func (s *Service) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.stop()
		<-done
		return ctx.Err()
	}
}

func (s *Service) run(ctx context.Context, p *Project, in types.ProjectInput) (*Project, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	p.Status = StatusRunning
	p.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, p); err != nil {
		if errors.Is(err, ErrNotFound) {
			s.publishDeleted(p.ID)
			return nil, ErrDeleted
		}
		return nil, fmt.Errorf("save project: %w", err)
	}

	s.Logger.Info("generating project plan", "project_id", p.ID, "project_type", p.ProjectType)
	st, err := s.Workflow.Run(ctx, workflow.FormatInput(in), func(ev workflow.Event) {
		s.publish(p.ID, ev)
	})
	if err != nil {
		p.Status = StatusFailed
		p.Error = err.Error()
		p.UpdatedAt = s.now()
		// the request context may be what failed, so record the failure on a fresh one
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := s.Repo.Update(saveCtx, p); serr != nil {
			if errors.Is(serr, ErrNotFound) {
				s.publishDeleted(p.ID)
				return nil, fmt.Errorf("%w: %w", ErrDeleted, err)
			}
			s.Logger.Error("save failed project", "project_id", p.ID, "error", serr)
		}
		s.publishDone(p)
		return nil, err
	}

	updated, err := s.UpdateResults(ctx, p.ID, st)
	if errors.Is(err, ErrNotFound) {
		s.publishDeleted(p.ID)
		return nil, ErrDeleted
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("project plan generated", "project_id", p.ID)
	s.publishDone(updated)
	return updated, nil
}

func (s *Service) publish(id string, ev workflow.Event) {
	if s.Events == nil {
		return
	}
	out := types.StageEvent{
		Type:      "stage",
		ProjectID: id,
		Stage:     ev.Stage,
		Status:    ev.Status,
		TS:        ev.At.UnixMilli(),
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	s.Events.Broadcast(id, out)
}

func (s *Service) publishDone(p *Project) {
	if s.Events == nil {
		return
	}
	s.Events.Broadcast(p.ID, DoneEvent(p))
}

func (s *Service) publishDeleted(id string) {
	s.Logger.Info("project deleted during generation", "project_id", id)
	if s.Events == nil {
		return
	}
	s.Events.Broadcast(id, types.StageEvent{
		Type:      "done",
		ProjectID: id,
		Status:    StatusDeleted,
		TS:        s.now().UnixMilli(),
	})
}

// DoneEvent is the terminal stream message for a finished project.
func DoneEvent(p *Project) types.StageEvent {
	return types.StageEvent{
		Type:      "done",
		ProjectID: p.ID,
		Status:    p.Status,
		Error:     p.Error,
		TS:        p.UpdatedAt.UnixMilli(),
	}
}

func (p *Project) Finished() bool {
	return p.Status == StatusCompleted || p.Status == StatusFailed
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
