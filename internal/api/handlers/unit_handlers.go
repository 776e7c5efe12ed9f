package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/api"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
)

// UnitHandlers contains handlers for unit operations
type UnitHandlers struct {
	service RosterService
	logger  *logging.Logger
}

// NewUnitHandlers creates a new UnitHandlers
func NewUnitHandlers(service RosterService, logger *logging.Logger) *UnitHandlers {
	return &UnitHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers unit routes on the router
func (h *UnitHandlers) RegisterRoutes(router *gin.RouterGroup) {
	units := router.Group("/units")
	{
		units.POST("", h.CreateUnit)
		units.GET("", h.ListUnits)
		units.GET("/:unitId", h.GetUnit)
		units.PUT("/:unitId", h.UpdateUnit)
		units.POST("/:unitId/deactivate", h.DeactivateUnit)
	}
}

// CreateUnit handles unit creation
func (h *UnitHandlers) CreateUnit(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name                   string   `json:"unit_name" binding:"required"`
		Type                   string   `json:"unit_type" binding:"required,unit_type"`
		MinimumStaff           int      `json:"minimum_staff" binding:"required"`
		RequiredCertifications []string `json:"required_certifications"`
		StationID              string   `json:"station_id"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.CreateUnitCommand{
		Name:                   req.Name,
		Type:                   req.Type,
		MinimumStaff:           req.MinimumStaff,
		RequiredCertifications: req.RequiredCertifications,
		StationID:              req.StationID,
	}

	unit, err := h.service.CreateUnit(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, unit)
}

// GetUnit handles getting a unit by ID
func (h *UnitHandlers) GetUnit(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	unitID := c.Param("unitId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id": unitID,
	})

	query := application.GetUnitQuery{UnitID: unitID}

	unit, err := h.service.GetUnit(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, unit)
}

// ListUnits handles listing units
func (h *UnitHandlers) ListUnits(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	page := api.ParsePagination(c)
	query := application.ListUnitsQuery{
		ActiveOnly: c.Query("active") == "true",
		Limit:      page.Limit(),
		Offset:     page.Offset(),
	}

	units, err := h.service.ListUnits(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	// Active-only listings are not paginated by the repository
	total := int64(len(units))
	if !query.ActiveOnly {
		if total, err = h.service.CountUnits(c.Request.Context()); err != nil {
			responder.RespondInternalError(err)
			return
		}
	}

	c.JSON(http.StatusOK, api.NewPageResponse(units, page, total))
}

// UpdateUnit handles updating a unit's configuration
func (h *UnitHandlers) UpdateUnit(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	unitID := c.Param("unitId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id": unitID,
	})

	var req struct {
		Name                   string   `json:"unit_name"`
		MinimumStaff           int      `json:"minimum_staff"`
		RequiredCertifications []string `json:"required_certifications"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.UpdateUnitCommand{
		UnitID:                 unitID,
		Name:                   req.Name,
		MinimumStaff:           req.MinimumStaff,
		RequiredCertifications: req.RequiredCertifications,
	}

	unit, err := h.service.UpdateUnit(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, unit)
}

// DeactivateUnit handles taking a unit out of service
func (h *UnitHandlers) DeactivateUnit(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	unitID := c.Param("unitId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id": unitID,
	})

	cmd := application.DeactivateUnitCommand{UnitID: unitID}

	unit, err := h.service.DeactivateUnit(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, unit)
}
