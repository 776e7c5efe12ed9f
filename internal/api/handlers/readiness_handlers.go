package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
)

// ReadinessHandlers contains handlers for readiness evaluation
type ReadinessHandlers struct {
	service ReadinessService
	logger  *logging.Logger
}

// NewReadinessHandlers creates a new ReadinessHandlers
func NewReadinessHandlers(service ReadinessService, logger *logging.Logger) *ReadinessHandlers {
	return &ReadinessHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers readiness routes on the router
func (h *ReadinessHandlers) RegisterRoutes(router *gin.RouterGroup) {
	readiness := router.Group("/readiness")
	{
		readiness.GET("", h.CheckAllUnits)
		readiness.GET("/:unitId", h.GetUnitReadiness)
		readiness.GET("/:unitId/history", h.GetReadinessHistory)
	}
}

// GetUnitReadiness handles computing a unit's current readiness
func (h *ReadinessHandlers) GetUnitReadiness(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	unitID := c.Param("unitId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id": unitID,
	})

	query := application.GetUnitReadinessQuery{UnitID: unitID}

	report, err := h.service.GetUnitReadiness(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, report)
}

// CheckAllUnits handles evaluating every active unit
func (h *ReadinessHandlers) CheckAllUnits(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	reports, err := h.service.CheckAllUnits(c.Request.Context())
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetReadinessHistory handles fetching historical readiness samples
func (h *ReadinessHandlers) GetReadinessHistory(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	unitID := c.Param("unitId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id": unitID,
	})

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	query := application.GetReadinessHistoryQuery{
		UnitID: unitID,
		Limit:  limit,
	}

	samples, err := h.service.GetReadinessHistory(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, samples)
}
