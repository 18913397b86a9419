package handlers

import (
	"net/http"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
	"github.com/steveyiyo/project-scheduling-backend/pkg/types"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Svc *project.Service
}

func NewHealthHandler(svc *project.Service) *HealthHandler {
	return &HealthHandler{Svc: svc}
}

func (h *HealthHandler) Root(c *gin.Context) {
	storage := "In-Memory"
	if h.Svc.StorageName() == "mongodb" {
		storage = "MongoDB"
	}
	c.JSON(http.StatusOK, types.MessageResp{Message: "Project Management System API with " + storage + " Storage"})
}

// Health reports unhealthy with 503 when the store cannot be counted.
func (h *HealthHandler) Health(c *gin.Context) {
	n, err := h.Svc.Count(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResp{Status: "unhealthy", Storage: h.Svc.StorageName()})
		return
	}
	c.JSON(http.StatusOK, types.HealthResp{
		Status:        "healthy",
		Storage:       h.Svc.StorageName(),
		ProjectsCount: n,
	})
}
