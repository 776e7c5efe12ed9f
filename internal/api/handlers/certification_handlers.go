package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/api"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/errors"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/logging"
	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/pkg/middleware"

	"github.com/DevonArnone/Emergency-Service-Readiness-Dashboard/internal/application"
)

// CertificationHandlers contains handlers for the certification catalog
// and expiry tracking
type CertificationHandlers struct {
	service CertificationService
	logger  *logging.Logger
}

// NewCertificationHandlers creates a new CertificationHandlers
func NewCertificationHandlers(service CertificationService, logger *logging.Logger) *CertificationHandlers {
	return &CertificationHandlers{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers certification routes on the router
func (h *CertificationHandlers) RegisterRoutes(router *gin.RouterGroup) {
	certs := router.Group("/certifications")
	{
		certs.POST("", h.CreateCertification)
		certs.GET("", h.ListCertifications)
		certs.GET("/expiring", h.ListExpiring)
		certs.GET("/expired", h.ListExpired)
		certs.POST("/expiry-scan", h.RunExpiryScan)
	}
}

// CreateCertification handles adding a catalog entry
func (h *CertificationHandlers) CreateCertification(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	var req struct {
		Name                string `json:"name" binding:"required,cert_name"`
		Description         string `json:"description"`
		Category            string `json:"category"`
		TypicalValidityDays int    `json:"typical_validity_days"`
	}
	if appErr := api.BindAndValidate(c, &req); appErr != nil {
		responder.RespondWithAppError(appErr)
		return
	}

	cmd := application.CreateCertificationCommand{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		TypicalValidityDays: req.TypicalValidityDays,
	}

	cert, err := h.service.CreateCertification(c.Request.Context(), cmd)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusCreated, cert)
}

// ListCertifications handles listing the catalog
func (h *CertificationHandlers) ListCertifications(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	certs, err := h.service.ListCertifications(c.Request.Context())
	if err != nil {
		responder.RespondInternalError(err)
		return
	}

	c.JSON(http.StatusOK, certs)
}

// ListExpiring handles listing certifications expiring soon
func (h *CertificationHandlers) ListExpiring(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	daysAhead, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	query := application.ListExpiringQuery{DaysAhead: daysAhead}

	expiring, err := h.service.ListExpiring(c.Request.Context(), query)
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, expiring)
}

// ListExpired handles listing certifications already past their expiry
func (h *CertificationHandlers) ListExpired(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	expired, err := h.service.ListExpired(c.Request.Context())
	if err != nil {
		responder.RespondInternalError(err)
		return
	}

	c.JSON(http.StatusOK, expired)
}

// RunExpiryScan handles sweeping the roster for expired certifications
func (h *CertificationHandlers) RunExpiryScan(c *gin.Context) {
	responder := middleware.NewErrorResponder(c, h.logger.Logger)

	result, err := h.service.RunExpiryScan(c.Request.Context())
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}

	c.JSON(http.StatusOK, result)
}
