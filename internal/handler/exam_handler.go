package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/models"
	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// ExamHandler exposes exam scheduling endpoints.
type ExamHandler struct {
	exams *service.ExamService
}

// NewExamHandler constructs handler.
func NewExamHandler(exams *service.ExamService) *ExamHandler {
	return &ExamHandler{exams: exams}
}

// Create godoc
// @Summary Schedule an exam inside an exam period
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateExamRequest true "Exam payload"
// @Success 201 {object} response.Envelope
// @Router /exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req service.CreateExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.exams.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, exam)
}

// Get godoc
// @Summary Get exam with subject and period detail
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *ExamHandler) Get(c *gin.Context) {
	exam, err := h.exams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}

// ListByPeriod godoc
// @Summary List exams scheduled in a period
// @Tags Exams
// @Produce json
// @Security BearerAuth
// @Param periodId query string true "Exam period ID"
// @Success 200 {object} response.Envelope
// @Router /exams [get]
func (h *ExamHandler) ListByPeriod(c *gin.Context) {
	periodID := c.Query("periodId")
	if periodID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "periodId is required"))
		return
	}
	exams, err := h.exams.ListByPeriod(c.Request.Context(), periodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exams, nil)
}

type transitionExamRequest struct {
	Status models.ExamStatus `json:"status" binding:"required"`
}

// Transition godoc
// @Summary Change exam status
// @Tags Exams
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Exam ID"
// @Param payload body transitionExamRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /exams/{id}/status [patch]
func (h *ExamHandler) Transition(c *gin.Context) {
	var req transitionExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	exam, err := h.exams.Transition(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}
