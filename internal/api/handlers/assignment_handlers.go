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
)

// AssignmentHandlers contains handlers for shift assignment operations
type AssignmentHandlers struct {
	service RosterService
	logger  *logging.Logger
}

// NewAssignmentHandlers creates a new AssignmentHandlers
func NewAssignmentHandlers(service RosterService, logger *logging.Logger) *AssignmentHandlers {
	return &AssignmentHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers assignment routes on the router
func (h *AssignmentHandlers) RegisterRoutes(router *gin.RouterGroup) {
	assignments := router.Group("/assignments")
	{
		assignments.POST("", h.CreateAssignment)
		assignments.GET("", h.ListAssignments)
		assignments.POST("/:assignmentId/end", h.EndAssignment)
		assignments.POST("/:assignmentId/absent", h.MarkAbsent)
	}
}

// CreateAssignment handles placing a responder on a unit shift
func (h *AssignmentHandlers) CreateAssignment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		PersonnelID string    `json:"personnel_id" binding:"required"`
		UnitID      string    `json:"unit_id" binding:"required"`
		ShiftStart  time.Time `json:"shift_start" binding:"required"`
		ShiftEnd    time.Time `json:"shift_end" binding:"required"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	middleware.AddSpanAttributes(c, map[string]interface{}{
		"unit.id":      req.UnitID,
		"personnel.id": req.PersonnelID,
	})

	cmd := application.CreateAssignmentCommand{
		PersonnelID: req.PersonnelID,
		UnitID:      req.UnitID,
		ShiftStart:  req.ShiftStart,
		ShiftEnd:    req.ShiftEnd,
	}

	assignment, err := h.service.CreateAssignment(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments handles listing assignments for a unit or responder
func (h *AssignmentHandlers) ListAssignments(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	query := application.ListAssignmentsQuery{
		UnitID:      c.Query("unit_id"),
		PersonnelID: c.Query("personnel_id"),
	}

	assignments, err := h.service.ListAssignments(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// EndAssignment handles ending a shift early
func (h *AssignmentHandlers) EndAssignment(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	assignmentID := c.Param("assignmentId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"assignment.id": assignmentID,
	})

	cmd := application.EndAssignmentCommand{AssignmentID: assignmentID}

	assignment, err := h.service.EndAssignment(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// MarkAbsent handles flagging an assigned responder as absent
func (h *AssignmentHandlers) MarkAbsent(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	assignmentID := c.Param("assignmentId")
	middleware.AddSpanAttributes(c, map[string]interface{}{
		"assignment.id": assignmentID,
	})

	cmd := application.MarkAbsentCommand{AssignmentID: assignmentID}

	assignment, err := h.service.MarkAbsent(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, assignment)
}
