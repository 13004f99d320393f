package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stanleysydney/anonsafety-api/internal/models"
	"github.com/stanleysydney/anonsafety-api/pkg/response"
)

type coordinatorService interface {
	List(ctx context.Context, region string) ([]models.Coordinator, error)
}

// CoordinatorHandler serves the regional coordinator directory.
type CoordinatorHandler struct {
	coordinators coordinatorService
}

// NewCoordinatorHandler constructs handler.
func NewCoordinatorHandler(coordinators coordinatorService) *CoordinatorHandler {
	return &CoordinatorHandler{coordinators: coordinators}
}

// List godoc
// @Summary List regional coordinators
// @Tags Coordinators
// @Produce json
// @Param region query string false "Filter by region"
// @Success 200 {object} response.Envelope
// @Router /coordinators [get]
func (h *CoordinatorHandler) List(c *gin.Context) {
	coordinators, err := h.coordinators.List(c.Request.Context(), c.Query("region"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, coordinators, nil)
}
