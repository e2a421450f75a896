package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"groom-admin-backend/internal/params"
	"groom-admin-backend/internal/queries"
)

type DashboardHandler struct {
	dashboard *queries.Dashboard
}

func NewDashboardHandler(dashboard *queries.Dashboard) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// GetDashboard godoc
// @Summary     Dashboard figures
// @Description Stats, today's activity, a daily series and service popularity for the last N days.
// @Tags        dashboard
// @Produce     json
// @Security    Bearer
// @Param       last query int false "Number of days, defaults to 7"
// @Success     200 {object} models.DashboardResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	days := params.ParseDays(c.Request.URL.Query())
	resp, err := h.dashboard.Get(c.Request.Context(), days)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}
