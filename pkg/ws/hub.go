package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn serialises writes to one websocket connection.
type Conn struct {
	mu sync.Mutex
	c  *websocket.Conn
}

func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.c.WriteJSON(v)
}

func (c *Conn) Close() error {
	return c.c.Close()
}

// Hub fans project events out to every connection subscribed to that project.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]map[*Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{conns: map[string]map[*Conn]struct{}{}}
}

func (h *Hub) Add(id string, c *websocket.Conn) *Conn {
	conn := &Conn{c: c}
	h.mu.Lock()
	set, ok := h.conns[id]
	if !ok {
		set = map[*Conn]struct{}{}
		h.conns[id] = set
	}
	set[conn] = struct{}{}
	h.mu.Unlock()
	return conn
}

func (h *Hub) Remove(id string, c *Conn) {
	h.mu.Lock()
	if set, ok := h.conns[id]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.conns, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) Count(id string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[id])
}

// Broadcast writes v to every subscriber of id. Subscribers that fail are closed and dropped.
func (h *Hub) Broadcast(id string, v any) {
	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns[id]))
	for c := range h.conns[id] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.WriteJSON(v); err != nil {
			h.Remove(id, c)
			c.Close()
		}
	}
}
