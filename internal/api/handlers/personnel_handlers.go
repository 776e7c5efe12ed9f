package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/api"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/domain"
)

// PersonnelHandlers contains handlers for personnel operations
type PersonnelHandlers struct {
	service RosterService
	logger  *logging.Logger
}

// NewPersonnelHandlers creates a new PersonnelHandlers
func NewPersonnelHandlers(service RosterService, logger *logging.Logger) *PersonnelHandlers {
	return &PersonnelHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers personnel routes on the router
func (h *PersonnelHandlers) RegisterRoutes(router *gin.RouterGroup) {
	personnel := router.Group("/personnel")
	{
		personnel.POST("", h.RegisterPersonnel)
		personnel.GET("", h.ListPersonnel)
		personnel.GET("/:personnelId", h.GetPersonnel)
		personnel.PUT("/:personnelId", h.UpdatePersonnel)
		personnel.PUT("/:personnelId/availability", h.SetAvailability)
		personnel.POST("/:personnelId/check-in", h.CheckIn)
		personnel.PUT("/:personnelId/certifications", h.SetCertifications)
	}
}

// RegisterPersonnel handles adding a responder to the roster
func (h *PersonnelHandlers) RegisterPersonnel(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name            string               `json:"name" binding:"required"`
		Rank            string               `json:"rank"`
		Role            string               `json:"role"`
		StationID       string               `json:"station_id"`
		Certifications  []string             `json:"certifications"`
		CertExpirations map[string]time.Time `json:"cert_expirations"`
		Availability    string               `json:"availability" binding:"omitempty,availability"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.RegisterPersonnelCommand{
		Name:            req.Name,
		Rank:            req.Rank,
		Role:            req.Role,
		StationID:       req.StationID,
		Certifications:  req.Certifications,
		CertExpirations: req.CertExpirations,
		Availability:    domain.AvailabilityStatus(req.Availability),
	}

	person, err := h.service.RegisterPersonnel(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, person)
}

// GetPersonnel handles getting a responder by ID
func (h *PersonnelHandlers) GetPersonnel(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	personnelID := c.Param("personnelId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"personnel.id": personnelID,
	})

	query := application.GetPersonnelQuery{PersonnelID: personnelID}

	person, err := h.service.GetPersonnel(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, person)
}

// ListPersonnel handles listing the roster
func (h *PersonnelHandlers) ListPersonnel(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	page := api.ParsePagination(c)
	query := application.ListPersonnelQuery{
		Availability: c.Query("availability"),
		Limit:        page.Limit(),
		Offset:       page.Offset(),
	}

	personnel, err := h.service.ListPersonnel(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	// Availability-filtered listings are not paginated by the repository
	total := int64(len(personnel))
	if query.Availability == "" {
		if total, err = h.service.CountPersonnel(c.Request.Context()); err != nil {
			responder.RespondInternalError(err)
			return
		}
	}

	c.JSON(http.StatusOK, api.NewPageResponse(personnel, page, total))
}

// UpdatePersonnel handles updating a responder's profile
func (h *PersonnelHandlers) UpdatePersonnel(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	personnelID := c.Param("personnelId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"personnel.id": personnelID,
	})

	var req struct {
		Name      string `json:"name"`
		Rank      string `json:"rank"`
		Role      string `json:"role"`
		StationID string `json:"station_id"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.UpdatePersonnelCommand{
		PersonnelID: personnelID,
		Name:        req.Name,
		Rank:        req.Rank,
		Role:        req.Role,
		StationID:   req.StationID,
	}

	person, err := h.service.UpdatePersonnel(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, person)
}

// SetAvailability handles availability status changes
func (h *PersonnelHandlers) SetAvailability(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	personnelID := c.Param("personnelId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"personnel.id": personnelID,
	})

	var req struct {
		Availability string `json:"availability" binding:"required,availability"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.SetAvailabilityCommand{
		PersonnelID:  personnelID,
		Availability: domain.AvailabilityStatus(req.Availability),
	}

	person, err := h.service.SetAvailability(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, person)
}

// CheckIn handles a responder check-in
func (h *PersonnelHandlers) CheckIn(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	personnelID := c.Param("personnelId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"personnel.id": personnelID,
	})

	cmd := application.CheckInCommand{PersonnelID: personnelID}

	person, err := h.service.CheckIn(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, person)
}

// SetCertifications handles replacing a responder's certifications
func (h *PersonnelHandlers) SetCertifications(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	personnelID := c.Param("personnelId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"personnel.id": personnelID,
	})

	var req struct {
		Certifications  []string             `json:"certifications" binding:"required"`
		CertExpirations map[string]time.Time `json:"cert_expirations"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.SetCertificationsCommand{
		PersonnelID:     personnelID,
		Certifications:  req.Certifications,
		CertExpirations: req.CertExpirations,
	}

	person, err := h.service.SetCertifications(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, person)
}
