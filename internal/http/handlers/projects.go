package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
	"github.com/steveyiyo/project-scheduling-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

type ProjectsHandler struct {
	Svc    *project.Service
	Logger *slog.Logger
}

func NewProjectsHandler(svc *project.Service, logger *slog.Logger) *ProjectsHandler {
	return &ProjectsHandler{Svc: svc, Logger: logger}
}

func (h *ProjectsHandler) Generate(c *gin.Context) {
	var body types.GenerateReq
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResp{Error: "bad_request", Detail: err.Error()})
		return
	}
	req := body.Input()

	if c.Query("async") == "true" {
		p, err := h.Svc.GenerateAsync(c.Request.Context(), req)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusAccepted, toProjectResp(p))
		return
	}

	p, err := h.Svc.Generate(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResp(p))
}

func (h *ProjectsHandler) List(c *gin.Context) {
	ps, err := h.Svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResp(ps))
}

func (h *ProjectsHandler) Get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toProjectResp(p))
}

func (h *ProjectsHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types.MessageResp{Message: "Project deleted successfully"})
}

func (h *ProjectsHandler) Search(c *gin.Context) {
	ps, err := h.Svc.Search(c.Request.Context(), c.Param("query"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toListResp(ps))
}

func (h *ProjectsHandler) fail(c *gin.Context, err error) {
	if errors.Is(err, project.ErrDeleted) {
		c.JSON(http.StatusConflict, types.ErrorResp{Error: "conflict", Detail: "Project was deleted during generation"})
		return
	}
	if errors.Is(err, project.ErrNotFound) {
		c.JSON(http.StatusNotFound, types.ErrorResp{Error: "not_found", Detail: "Project not found"})
		return
	}
	h.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, types.ErrorResp{Error: "internal_error", Detail: err.Error()})
}

func toProjectResp(p *project.Project) types.ProjectResp {
	return types.ProjectResp{
		ID:         p.ID,
		Plan:       p.Plan,
		Schedule:   p.Schedule,
		Review:     p.Review,
		HTMLOutput: p.HTMLOutput,
		Status:     p.Status,
		Error:      p.Error,
		CreatedAt:  p.CreatedAt,
	}
}

func toListResp(ps []*project.Project) []types.ProjectListItem {
	out := make([]types.ProjectListItem, 0, len(ps))
	for _, p := range ps {
		out = append(out, types.ProjectListItem{
			ID:          p.ID,
			ProjectType: p.ProjectType,
			Objectives:  p.Objectives,
			Industry:    p.Industry,
			CreatedAt:   p.CreatedAt,
		})
	}
	return out
}
