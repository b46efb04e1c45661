package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/service"
	"github.com/shavuson/recruit-api/pkg/response"
)

// AdminHandler exposes the platform operator panel.
type AdminHandler struct {
	institutions *service.InstitutionService
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(institutions *service.InstitutionService) *AdminHandler {
	return &AdminHandler{institutions: institutions}
}

// ListInstitutions godoc
// @Summary List all institutions
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param search query string false "Search by name or email"
// @Param active query bool false "Filter by active state"
// @Param paid query bool false "Filter by payment method"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/institutions [get]
func (h *AdminHandler) ListInstitutions(c *gin.Context) {
	var filter models.InstitutionFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if active := c.Query("active"); active != "" {
		v := active == "true"
		filter.Active = &v
	}
	if paid := c.Query("paid"); paid != "" {
		v := paid == "true"
		filter.HasPayment = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	institutions, pagination, err := h.institutions.AdminList(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institutions, pagination)
}

// ExtendTrial godoc
// @Summary Extend an institution's trial
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Institution ID"
// @Param payload body object false "Optional {days}; defaults to the configured grant"
// @Success 200 {object} response.Envelope
// @Router /admin/institutions/{id}/extend-trial [post]
func (h *AdminHandler) ExtendTrial(c *gin.Context) {
	var req struct {
		Days int `json:"days"`
	}
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
	}
	institution, err := h.institutions.ExtendTrial(c.Request.Context(), c.Param("id"), req.Days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// SetActive godoc
// @Summary Activate or deactivate an institution
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Institution ID"
// @Success 200 {object} response.Envelope
// @Router /admin/institutions/{id}/active [put]
func (h *AdminHandler) SetActive(c *gin.Context) {
	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	institution, err := h.institutions.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// PlatformStats godoc
// @Summary Platform-wide statistics
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) PlatformStats(c *gin.Context) {
	stats, err := h.institutions.PlatformStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
