package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shavuson/recruit-api/internal/service"
	"github.com/shavuson/recruit-api/pkg/response"
)

// InteractionHandler exposes the candidate contact log.
type InteractionHandler struct {
	interactions *service.InteractionService
}

// NewInteractionHandler constructs InteractionHandler.
func NewInteractionHandler(interactions *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// List godoc
// @Summary List a candidate's interactions
// @Tags Interactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/interactions [get]
func (h *InteractionHandler) List(c *gin.Context) {
	interactions, err := h.interactions.List(c.Request.Context(), institutionFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interactions, nil)
}

// Log godoc
// @Summary Append an interaction to a candidate's history
// @Tags Interactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.LogInteractionRequest true "Interaction payload"
// @Success 201 {object} response.Envelope
// @Router /candidates/{id}/interactions [post]
func (h *InteractionHandler) Log(c *gin.Context) {
	var req service.LogInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	interaction, err := h.interactions.Log(c.Request.Context(), institutionFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, interaction)
}
