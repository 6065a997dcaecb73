package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Berytech/Investment-Platform/internal/database"
	"github.com/Berytech/Investment-Platform/internal/response"
)

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	db          *database.PostgresDB
	serviceName string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.PostgresDB, serviceName string) *HealthHandler {
	return &HealthHandler{db: db, serviceName: serviceName}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, gin.H{
		"service": h.serviceName,
		"status":  "ok",
	}, "")
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.db != nil {
		if err := h.db.Ping(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	response.Success(c, gin.H{
		"service": h.serviceName,
		"status":  "ready",
	}, "")
}
