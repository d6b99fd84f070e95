package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prankitapotbhare/TinyLink/internal/models"
	"github.com/prankitapotbhare/TinyLink/internal/repository"
)

// HealthController reports store reachability and process uptime. The start
// time is captured at construction and passed in explicitly rather than read
// from package-level state.
type HealthController struct {
	repo      repository.LinkRepository
	version   string
	startTime time.Time
}

func NewHealthController(repo repository.LinkRepository, version string, startTime time.Time) *HealthController {
	return &HealthController{
		repo:      repo,
		version:   version,
		startTime: startTime,
	}
}

// Healthz handles GET /api/healthz
func (hc *HealthController) Healthz(c *gin.Context) {
	now := time.Now()
	response := models.HealthResponse{
		OK:            true,
		Version:       hc.version,
		UptimeSeconds: int64(now.Sub(hc.startTime).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
		Database:      "connected",
	}

	if err := hc.repo.Ping(c.Request.Context()); err != nil {
		response.OK = false
		response.Database = "disconnected"
		response.Error = err.Error()
		c.JSON(http.StatusInternalServerError, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
