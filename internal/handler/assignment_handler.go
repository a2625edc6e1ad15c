package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// AssignmentHandler exposes professor-subject assignment endpoints.
type AssignmentHandler struct {
	assignments *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(assignments *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignments: assignments}
}

// Assign godoc
// @Summary Assign a professor to a subject for an academic year
// @Tags Assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.AssignProfessorRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.assignments.Assign(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Unassign godoc
// @Summary Retire a professor-subject assignment
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param professorId path string true "Professor ID"
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{professorId}/{id} [delete]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	if err := h.assignments.Unassign(c.Request.Context(), c.Param("professorId"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByProfessor godoc
// @Summary List a professor's assignments
// @Tags Assignments
// @Produce json
// @Security BearerAuth
// @Param professorId path string true "Professor ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{professorId} [get]
func (h *AssignmentHandler) ListByProfessor(c *gin.Context) {
	assignments, err := h.assignments.ListByProfessor(c.Request.Context(), c.Param("professorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}
