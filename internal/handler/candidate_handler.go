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

// CandidateHandler exposes candidate endpoints.
type CandidateHandler struct {
	candidates *service.CandidateService
}

// NewCandidateHandler constructs CandidateHandler.
func NewCandidateHandler(candidates *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidates: candidates}
}

// List godoc
// @Summary List the institution's candidates
// @Tags Candidates
// @Security BearerAuth
// @Produce json
// @Param search query string false "Search by name or phone"
// @Param stage query string false "Filter by funnel stage"
// @Param status query string false "Filter by status"
// @Param source query string false "Filter by referral source"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	var filter models.CandidateFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	if stage := c.Query("stage"); stage != "" {
		v := models.Stage(stage)
		filter.Stage = &v
	}
	if status := c.Query("status"); status != "" {
		v := models.Status(status)
		filter.Status = &v
	}
	if source := c.Query("source"); source != "" {
		v := models.Source(source)
		filter.Source = &v
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	candidates, pagination, err := h.candidates.List(c.Request.Context(), institutionFromContext(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, pagination)
}

// Get godoc
// @Summary Get one candidate
// @Tags Candidates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidates.Get(c.Request.Context(), institutionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Create godoc
// @Summary Register a candidate
// @Tags Candidates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.CreateCandidateRequest true "Candidate payload"
// @Success 201 {object} response.Envelope
// @Router /candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	var req service.CreateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	candidate, err := h.candidates.Create(c.Request.Context(), institutionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, candidate)
}

// Update godoc
// @Summary Update a candidate
// @Tags Candidates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.UpdateCandidateRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id} [put]
func (h *CandidateHandler) Update(c *gin.Context) {
	var req service.UpdateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	candidate, err := h.candidates.Update(c.Request.Context(), institutionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// SetStage godoc
// @Summary Move a candidate to another funnel stage
// @Tags Candidates
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/stage [patch]
func (h *CandidateHandler) SetStage(c *gin.Context) {
	var req struct {
		Stage models.Stage `json:"stage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	candidate, err := h.candidates.SetStage(c.Request.Context(), institutionFromContext(c), c.Param("id"), req.Stage)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Enroll godoc
// @Summary Quick-enroll a candidate
// @Tags Candidates
// @Security BearerAuth
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/enroll [post]
func (h *CandidateHandler) Enroll(c *gin.Context) {
	candidate, err := h.candidates.QuickEnroll(c.Request.Context(), institutionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate, nil)
}

// Delete godoc
// @Summary Delete a candidate and its interaction log
// @Tags Candidates
// @Security BearerAuth
// @Param id path string true "Candidate ID"
// @Success 204
// @Router /candidates/{id} [delete]
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidates.Delete(c.Request.Context(), institutionFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
