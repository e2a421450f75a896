package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/models"
	"groom-admin-backend/internal/queries"
	"groom-admin-backend/internal/querycache"
)

const healthPingTimeout = 2 * time.Second

// Pinger is an optional dependency that can report whether it answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthConfig struct {
	Cache    *querycache.Cache
	Bookings *queries.Bookings
	// AdminAvailable is false when user create and delete are disabled.
	AdminAvailable bool
	// Events is the invalidation bus, nil when running a single replica.
	Events Pinger
}

type HealthHandler struct {
	cfg HealthConfig
	now func() time.Time
}

func NewHealthHandler(cfg HealthConfig) *HealthHandler {
	return &HealthHandler{cfg: cfg, now: time.Now}
}

// Check godoc
// @Summary     Health check
// @Description Reports cache size, in-flight booking writes, admin availability and event bus reachability.
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	resp := models.HealthResponse{
		Status:          models.HealthOK,
		Time:            h.now().UTC(),
		CacheEntries:    h.cfg.Cache.Len(),
		BookingWrites:   h.cfg.Bookings.Pending(),
		AdminOperations: h.cfg.AdminAvailable,
		Events:          models.EventsDisabled,
	}

	if h.cfg.Events != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		resp.Events = models.EventsOK
		if err := h.cfg.Events.Ping(ctx); err != nil {
			resp.Events = models.EventsUnreachable
			resp.Status = models.HealthDegraded
		}
	}

	status := http.StatusOK
	if resp.Status != models.HealthOK {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}
