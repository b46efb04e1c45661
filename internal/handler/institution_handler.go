package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/service"
	"github.com/shavuson/recruit-api/pkg/response"
)

// InstitutionHandler exposes the tenant account surface.
type InstitutionHandler struct {
	institutions *service.InstitutionService
}

// NewInstitutionHandler constructs InstitutionHandler.
func NewInstitutionHandler(institutions *service.InstitutionService) *InstitutionHandler {
	return &InstitutionHandler{institutions: institutions}
}

// Get godoc
// @Summary Get the account profile
// @Tags Institution
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institution [get]
func (h *InstitutionHandler) Get(c *gin.Context) {
	institution, err := h.institutions.Get(c.Request.Context(), institutionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// Update godoc
// @Summary Update account settings
// @Tags Institution
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body service.UpdateInstitutionRequest true "Settings payload"
// @Success 200 {object} response.Envelope
// @Router /institution [put]
func (h *InstitutionHandler) Update(c *gin.Context) {
	var req service.UpdateInstitutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	institution, err := h.institutions.Update(c.Request.Context(), institutionFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}

// Subscription godoc
// @Summary Subscription status
// @Tags Institution
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institution/subscription [get]
func (h *InstitutionHandler) Subscription(c *gin.Context) {
	status, err := h.institutions.Subscription(c.Request.Context(), institutionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// AddPaymentMethod godoc
// @Summary Mark the account as paying
// @Tags Institution
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /institution/payment-method [post]
func (h *InstitutionHandler) AddPaymentMethod(c *gin.Context) {
	institution, err := h.institutions.AddPaymentMethod(c.Request.Context(), institutionFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, institution, nil)
}
