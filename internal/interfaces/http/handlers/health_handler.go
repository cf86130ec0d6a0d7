package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"ok": true, "status": "healthy", "time": time.Now().UTC()}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["ok"] = false
			body["status"] = "degraded"
			body["database"] = "unreachable"
		}
	}
	c.JSON(status, body)
}
