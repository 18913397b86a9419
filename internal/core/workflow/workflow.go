// Package workflow runs the planning pipeline: planner, scheduler, reviewer
// and HTML generator, each one LLM call feeding the next through State.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/llm"
	"github.com/steveyiyo/project-scheduling-backend/pkg/types"
)

const (
	StagePlanner   = "planner"
	StageScheduler = "scheduler"
	StageReviewer  = "reviewer"
	StageHTML      = "html_generator"
)

const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventFailed    = "failed"
)

type State struct {
	Input      string
	Plan       string
	Schedule   string
	Review     string
	HTMLOutput string
}

type Event struct {
	Stage  string
	Status string
	Err    error
	At     time.Time
}

// Observer is called synchronously for every stage transition.
type Observer func(Event)

type stage struct {
	name   string
	prompt func(*State) string
	store  func(*State, string)
}

type Workflow struct {
	llm    llm.Completer
	stages []stage
	logger *slog.Logger
}

func New(c llm.Completer, logger *slog.Logger) *Workflow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		llm:    c,
		logger: logger,
		stages: []stage{
			{StagePlanner, planPrompt, func(s *State, out string) { s.Plan = out }},
			{StageScheduler, schedulePrompt, func(s *State, out string) { s.Schedule = out }},
			{StageReviewer, reviewPrompt, func(s *State, out string) { s.Review = out }},
			{StageHTML, renderPrompt, func(s *State, out string) { s.HTMLOutput = out }},
		},
	}
}

// Stages returns the stage names in execution order.
func (w *Workflow) Stages() []string {
	names := make([]string, len(w.stages))
	for i, st := range w.stages {
		names[i] = st.name
	}
	return names
}

func (w *Workflow) Run(ctx context.Context, input string, obs Observer) (State, error) {
	if obs == nil {
		obs = func(Event) {}
	}
	state := State{Input: input}
	for _, st := range w.stages {
		if err := ctx.Err(); err != nil {
			return state, err
		}
		obs(Event{Stage: st.name, Status: EventStarted, At: time.Now()})
		start := time.Now()
		out, err := w.llm.Complete(ctx, st.prompt(&state))
		if err != nil {
			obs(Event{Stage: st.name, Status: EventFailed, Err: err, At: time.Now()})
			return state, fmt.Errorf("%s stage: %w", st.name, err)
		}
		st.store(&state, out)
		w.logger.Debug("agent output", "stage", st.name, "elapsed_ms", time.Since(start).Milliseconds(), "output", out)
		obs(Event{Stage: st.name, Status: EventCompleted, At: time.Now()})
	}
	return state, nil
}

// FormatInput renders a project request as the description block every stage sees.
func FormatInput(in types.ProjectInput) string {
	var b strings.Builder
	b.WriteString("\n**Project Type:** ")
	b.WriteString(in.ProjectType)
	b.WriteString("\n\n**Project Objectives:** ")
	b.WriteString(in.Objectives)
	b.WriteString("\n\n**Industry:** ")
	b.WriteString(in.Industry)
	b.WriteString("\n\n**Team Members:**\n")
	b.WriteString(bullets(in.TeamMembers))
	b.WriteString("\n\n**Project Requirements:**\n")
	b.WriteString(bullets(in.Requirements))
	b.WriteString("\n")
	return b.String()
}

func bullets(items []string) string {
	lines := make([]string, len(items))
	for i, it := range items {
		lines[i] = "- " + it
	}
	return strings.Join(lines, "\n")
}
