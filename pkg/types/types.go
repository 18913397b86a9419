package types

import "time"

type ProjectInput struct {
	ProjectType  string   `json:"project_type"`
	Objectives   string   `json:"objectives"`
	Industry     string   `json:"industry"`
	TeamMembers  []string `json:"team_members"`
	Requirements []string `json:"requirements"`
}

// GenerateReq is the request body of POST /generate-project-plan. Every field
// must be present and non-null; empty strings and empty lists are accepted.
type GenerateReq struct {
	ProjectType  *string  `json:"project_type" binding:"required"`
	Objectives   *string  `json:"objectives" binding:"required"`
	Industry     *string  `json:"industry" binding:"required"`
	TeamMembers  []string `json:"team_members" binding:"required"`
	Requirements []string `json:"requirements" binding:"required"`
}

func (r GenerateReq) Input() ProjectInput {
	return ProjectInput{
		ProjectType:  deref(r.ProjectType),
		Objectives:   deref(r.Objectives),
		Industry:     deref(r.Industry),
		TeamMembers:  r.TeamMembers,
		Requirements: r.Requirements,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type ProjectResp struct {
	ID         string    `json:"id"`
	Plan       string    `json:"plan"`
	Schedule   string    `json:"schedule"`
	Review     string    `json:"review"`
	HTMLOutput string    `json:"html_output"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type ProjectListItem struct {
	ID          string    `json:"id"`
	ProjectType string    `json:"project_type"`
	Objectives  string    `json:"objectives"`
	Industry    string    `json:"industry"`
	CreatedAt   time.Time `json:"created_at"`
}

type MessageResp struct {
	Message string `json:"message"`
}

type HealthResp struct {
	Status        string `json:"status"`
	Storage       string `json:"storage"`
	ProjectsCount int64  `json:"projects_count"`
}

type ErrorResp struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// StageEvent is pushed to stream subscribers as a project moves through the pipeline.
type StageEvent struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
	Stage     string `json:"stage,omitempty"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	TS        int64  `json:"ts"`
}
