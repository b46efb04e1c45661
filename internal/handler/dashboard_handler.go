package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/service"
	"github.com/shavuson/recruit-api/pkg/response"
)

// DashboardHandler exposes the landing view aggregates.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Overview godoc
// @Summary Dashboard overview
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Overview(c *gin.Context) {
	overview, err := h.dashboard.Overview(c.Request.Context(), institutionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, nil)
}

// Funnel godoc
// @Summary Recruitment funnel summary
// @Tags Dashboard
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/funnel [get]
func (h *DashboardHandler) Funnel(c *gin.Context) {
	funnel, err := h.dashboard.Funnel(c.Request.Context(), institutionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, funnel, nil)
}
