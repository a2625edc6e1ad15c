package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/models"
	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// ExamPeriodHandler exposes exam period endpoints.
type ExamPeriodHandler struct {
	periods *service.ExamPeriodService
}

// NewExamPeriodHandler constructs handler.
func NewExamPeriodHandler(periods *service.ExamPeriodService) *ExamPeriodHandler {
	return &ExamPeriodHandler{periods: periods}
}

// Create godoc
// @Summary Create exam period
// @Tags ExamPeriods
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateExamPeriodRequest true "Period payload"
// @Success 201 {object} response.Envelope
// @Router /exam-periods [post]
func (h *ExamPeriodHandler) Create(c *gin.Context) {
	var req service.CreateExamPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	period, err := h.periods.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, period)
}

// Get godoc
// @Summary Get exam period
// @Tags ExamPeriods
// @Produce json
// @Security BearerAuth
// @Param id path string true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /exam-periods/{id} [get]
func (h *ExamPeriodHandler) Get(c *gin.Context) {
	period, err := h.periods.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, period, nil)
}

// List godoc
// @Summary List exam periods
// @Tags ExamPeriods
// @Produce json
// @Security BearerAuth
// @Param academicYear query string false "Filter by academic year"
// @Param semester query string false "Filter by semester (WINTER or SUMMER)"
// @Success 200 {object} response.Envelope
// @Router /exam-periods [get]
func (h *ExamPeriodHandler) List(c *gin.Context) {
	periods, err := h.periods.List(c.Request.Context(), c.Query("academicYear"), models.SemesterType(c.Query("semester")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}

// Active godoc
// @Summary List periods whose window contains the current time
// @Tags ExamPeriods
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /exam-periods/active [get]
func (h *ExamPeriodHandler) Active(c *gin.Context) {
	periods, err := h.periods.ActivePeriods(c.Request.Context(), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, periods, nil)
}
