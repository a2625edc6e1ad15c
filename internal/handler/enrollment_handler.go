package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/models"
	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// EnrollmentHandler exposes program and course enrollment endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs handler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// EnrollInProgram godoc
// @Summary Enroll a student into a study program
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EnrollInProgramRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments/programs [post]
func (h *EnrollmentHandler) EnrollInProgram(c *gin.Context) {
	var req service.EnrollInProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.EnrollInProgram(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

type updateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" binding:"required"`
}

// UpdateStatus godoc
// @Summary Change program enrollment status
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Param payload body updateEnrollmentStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /enrollments/programs/{id}/status [patch]
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var req updateEnrollmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.UpdateProgramStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// AdvanceYear godoc
// @Summary Advance an active enrollment to the next year of study
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/programs/{id}/advance [post]
func (h *EnrollmentHandler) AdvanceYear(c *gin.Context) {
	enrollment, err := h.enrollments.AdvanceYear(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// ListPrograms godoc
// @Summary List program enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId query string false "Filter by student"
// @Param programId query string false "Filter by study program"
// @Param academicYear query string false "Filter by academic year"
// @Param status query string false "Filter by status"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments/programs [get]
func (h *EnrollmentHandler) ListPrograms(c *gin.Context) {
	filter := models.StudentEnrollmentFilter{
		StudentID:      c.Query("studentId"),
		StudyProgramID: c.Query("programId"),
		AcademicYear:   c.Query("academicYear"),
		Status:         models.EnrollmentStatus(c.Query("status")),
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "pageSize", 20),
	}
	enrollments, pagination, err := h.enrollments.ListProgramEnrollments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// EnrollInCourse godoc
// @Summary Enroll a student into a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.EnrollInCourseRequest true "Course enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments/courses [post]
func (h *EnrollmentHandler) EnrollInCourse(c *gin.Context) {
	var req service.EnrollInCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.EnrollInCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// DropCourse godoc
// @Summary Drop an active course enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param subjectId path string true "Subject ID"
// @Param academicYear query string true "Academic year"
// @Success 204
// @Router /enrollments/courses/{studentId}/{subjectId} [delete]
func (h *EnrollmentHandler) DropCourse(c *gin.Context) {
	if err := h.enrollments.DropCourse(c.Request.Context(), c.Param("studentId"), c.Param("subjectId"), c.Query("academicYear")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCourses godoc
// @Summary List a student's active course enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param academicYear query string false "Academic year"
// @Success 200 {object} response.Envelope
// @Router /enrollments/courses/{studentId} [get]
func (h *EnrollmentHandler) ListCourses(c *gin.Context) {
	courses, err := h.enrollments.ListCourses(c.Request.Context(), c.Param("studentId"), c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}
