package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/service"
	"github.com/shavuson/recruit-api/pkg/response"
)

// InsightsHandler exposes the generative analysis endpoints.
type InsightsHandler struct {
	insights *service.InsightsService
}

// NewInsightsHandler constructs InsightsHandler.
func NewInsightsHandler(insights *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// CandidateAnalysis godoc
// @Summary Generate a lead analysis for one candidate
// @Tags Insights
// @Security BearerAuth
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /candidates/{id}/analysis [get]
func (h *InsightsHandler) CandidateAnalysis(c *gin.Context) {
	analysis, err := h.insights.LeadAnalysis(c.Request.Context(), institutionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis, nil)
}

// ManagementInsights godoc
// @Summary Generate strategic insights over the whole funnel
// @Tags Insights
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /dashboard/insights [get]
func (h *InsightsHandler) ManagementInsights(c *gin.Context) {
	result, err := h.insights.ManagementInsights(c.Request.Context(), institutionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
