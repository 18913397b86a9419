package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/steveyiyo/project-scheduling-backend/internal/core/project"
	"github.com/steveyiyo/project-scheduling-backend/pkg/types"
	"github.com/steveyiyo/project-scheduling-backend/pkg/ws"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type StreamHandler struct {
	Hub      *ws.Hub
	Svc      *project.Service
	Upgrader websocket.Upgrader
}

// NewStreamHandler accepts upgrades only from the given origins.
func NewStreamHandler(h *ws.Hub, s *project.Service, origins ...string) *StreamHandler {
	allowed := map[string]struct{}{}
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	return &StreamHandler{
		Hub: h,
		Svc: s,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

func (h *StreamHandler) WS(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Svc.Get(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusNotFound, types.ErrorResp{Error: "not_found", Detail: "Project not found"})
		return
	}
	raw, err := h.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	conn := h.Hub.Add(id, raw)
	defer func() {
		h.Hub.Remove(id, conn)
		conn.Close()
	}()

	_ = conn.WriteJSON(gin.H{
		"type":       "hello",
		"project_id": id,
		"ts":         time.Now().UnixMilli(),
	})

	// the run may have finished before we subscribed
	if p, err := h.Svc.Get(c.Request.Context(), id); err == nil && p.Finished() {
		_ = conn.WriteJSON(project.DoneEvent(p))
	}

	raw.SetReadLimit(4 << 10)
	raw.SetReadDeadline(time.Now().Add(pongWait))
	raw.SetPongHandler(func(string) error {
		raw.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(pingPeriod)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := raw.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	for {
		if _, _, err := raw.ReadMessage(); err != nil {
			return
		}
	}
}
