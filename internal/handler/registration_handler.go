package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// RegistrationHandler exposes exam registration endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
	metrics       *service.MetricsService
}

// NewRegistrationHandler constructs handler.
func NewRegistrationHandler(registrations *service.RegistrationService, metrics *service.MetricsService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, metrics: metrics}
}

// Register godoc
// @Summary Register a student for an exam
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Register(c.Request.Context(), req, time.Now().UTC())
	if err != nil {
		h.metrics.RecordRegistrationOutcome(registrationOutcome(err))
		response.Error(c, err)
		return
	}
	h.metrics.RecordRegistrationOutcome("registered")
	response.Created(c, registration)
}

// ListRegistered godoc
// @Summary List a student's exam registrations
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{studentId} [get]
func (h *RegistrationHandler) ListRegistered(c *gin.Context) {
	registrations, err := h.registrations.ListRegistered(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}

// ListAvailable godoc
// @Summary List exams a student can currently register for
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{studentId}/available [get]
func (h *RegistrationHandler) ListAvailable(c *gin.Context) {
	exams, err := h.registrations.ListAvailable(c.Request.Context(), c.Param("studentId"), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

func registrationOutcome(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrRegistrationClosed):
		return "closed"
	case errors.Is(err, appErrors.ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, appErrors.ErrNotEnrolled):
		return "ineligible"
	default:
		return "rejected"
	}
}
