package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univ-is/academic-records-api/internal/models"
	"github.com/univ-is/academic-records-api/internal/service"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
	"github.com/univ-is/academic-records-api/pkg/response"
)

// StudyProgramHandler exposes study program catalog endpoints.
type StudyProgramHandler struct {
	programs *service.ProgramService
}

// NewStudyProgramHandler constructs handler.
func NewStudyProgramHandler(programs *service.ProgramService) *StudyProgramHandler {
	return &StudyProgramHandler{programs: programs}
}

// Create godoc
// @Summary Create study program
// @Tags Programs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateStudyProgramRequest true "Program payload"
// @Success 201 {object} response.Envelope
// @Router /programs [post]
func (h *StudyProgramHandler) Create(c *gin.Context) {
	var req service.CreateStudyProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	program, err := h.programs.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

// Get godoc
// @Summary Get study program
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *StudyProgramHandler) Get(c *gin.Context) {
	program, err := h.programs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// List godoc
// @Summary List study programs
// @Tags Programs
// @Produce json
// @Security BearerAuth
// @Param facultyId query string false "Filter by faculty"
// @Param search query string false "Search by code or name"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *StudyProgramHandler) List(c *gin.Context) {
	filter := models.StudyProgramFilter{
		FacultyID: c.Query("facultyId"),
		Search:    c.Query("search"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
	}
	programs, total, err := h.programs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total})
}
