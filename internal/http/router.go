package http

import (
	"log/slog"

	"github.com/steveyiyo/project-scheduling-backend/internal/config"
	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
	"github.com/steveyiyo/project-scheduling-backend/internal/http/handlers"
	"github.com/steveyiyo/project-scheduling-backend/internal/http/middleware"
	"github.com/steveyiyo/project-scheduling-backend/pkg/ws"

	"github.com/gin-gonic/gin"
)

func NewRouter(cfg config.Config, svc *project.Service, hub *ws.Hub, logger *slog.Logger) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), middleware.CORS(cfg.FrontendURL))

	hh := handlers.NewHealthHandler(svc)
	ph := handlers.NewProjectsHandler(svc, logger)
	sh := handlers.NewStreamHandler(hub, svc, cfg.FrontendURL)

	r.GET("/", hh.Root)
	r.GET("/health", hh.Health)
	r.POST("/generate-project-plan", ph.Generate)

	api := r.Group("/projects")
	api.GET("", ph.List)
	api.GET("/:id", ph.Get)
	api.DELETE("/:id", ph.Delete)
	api.GET("/:id/stream", sh.WS)
	api.GET("/search/:query", ph.Search)
	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
		)
	}
}
