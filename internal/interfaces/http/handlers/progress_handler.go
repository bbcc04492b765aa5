package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/SymRxn/internal/application/enumeration"
)

// ProgressResponse is the body of GET /progress.
type ProgressResponse struct {
	Done     int       `json:"done"`
	Total    int       `json:"total"`
	Template string    `json:"template,omitempty"`
	Target   string    `json:"target,omitempty"`
	Updated  time.Time `json:"updated,omitempty"`
}

// ProgressHandler keeps the latest batch progress for polling clients.
type ProgressHandler struct {
	mu   sync.RWMutex
	last ProgressResponse
}

// NewProgressHandler returns a handler with no progress recorded.
func NewProgressHandler() *ProgressHandler {
	return &ProgressHandler{}
}

// Update records p. It has the enumeration.ProgressFunc signature.
func (h *ProgressHandler) Update(p enumeration.Progress) {
	h.mu.Lock()
	h.last = ProgressResponse{Done: p.Done, Total: p.Total, Template: p.Template, Target: p.Target, Updated: time.Now()}
	h.mu.Unlock()
}

// Snapshot returns the latest progress.
func (h *ProgressHandler) Snapshot() ProgressResponse {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last
}

// Get serves the latest progress.
func (h *ProgressHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.Snapshot())
}

//Personal.AI order the ending
