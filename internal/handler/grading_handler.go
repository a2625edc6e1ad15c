package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/models"
	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// GradingHandler exposes grading and transcript endpoints.
type GradingHandler struct {
	grading *service.GradingService
	metrics *service.MetricsService
}

// NewGradingHandler constructs handler.
func NewGradingHandler(grading *service.GradingService, metrics *service.MetricsService) *GradingHandler {
	return &GradingHandler{grading: grading, metrics: metrics}
}

// GradeExam godoc
// @Summary Record a grade for an exam attempt
// @Tags Grading
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.GradeExamRequest true "Grade payload"
// @Success 201 {object} response.Envelope
// @Router /grades [post]
func (h *GradingHandler) GradeExam(c *gin.Context) {
	var req service.GradeExamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if claims := claimsFromContext(c); claims != nil && claims.Role == models.RoleProfessor {
		req.ProfessorID = claims.UserID
	}
	grade, err := h.grading.GradeExam(c.Request.Context(), req, time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.metrics.RecordGradeEntry()
	response.Created(c, grade)
}

// AttemptState godoc
// @Summary Get the grading lifecycle state for a student's exam attempt
// @Tags Grading
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param examId path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{studentId}/{examId}/state [get]
func (h *GradingHandler) AttemptState(c *gin.Context) {
	state, err := h.grading.AttemptState(c.Request.Context(), c.Param("studentId"), c.Param("examId"), time.Now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"state": state}, nil)
}

// Transcript godoc
// @Summary Get a student's transcript of graded attempts
// @Tags Grading
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /transcripts/{studentId} [get]
func (h *GradingHandler) Transcript(c *gin.Context) {
	rows, err := h.grading.Transcript(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportTranscript godoc
// @Summary Download a student's transcript as CSV or PDF
// @Tags Grading
// @Produce octet-stream
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} byte
// @Router /transcripts/{studentId}/export [get]
func (h *GradingHandler) ExportTranscript(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	payload, filename, err := h.grading.ExportTranscript(c.Request.Context(), c.Param("studentId"), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	contentType := "text/csv"
	if format == "pdf" {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
