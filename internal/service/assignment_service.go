package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type assignmentRepository interface {
	ListByProfessor(ctx context.Context, professorID string) ([]models.ProfessorAssignmentDetail, error)
	ExistsActive(ctx context.Context, professorID, subjectID, academicYear string) (bool, error)
	Insert(ctx context.Context, assignment *models.ProfessorAssignment) (bool, error)
	Deactivate(ctx context.Context, professorID, assignmentID string) error
}

// AssignProfessorRequest describes a subject assignment payload.
type AssignProfessorRequest struct {
	ProfessorID  string `json:"professor_id" validate:"required"`
	SubjectID    string `json:"subject_id" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// AssignmentService manages professor-subject assignments.
type AssignmentService struct {
	repo      assignmentRepository
	subjects  subjectReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentRepository, subjects subjectReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, subjects: subjects, validator: validate, logger: logger}
}

// Assign links a professor to a subject for an academic year. The unique
// (professor, subject, year) index rejects a second active assignment.
func (s *AssignmentService) Assign(ctx context.Context, req AssignProfessorRequest) (*models.ProfessorAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownSubject
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	assignment := &models.ProfessorAssignment{
		ProfessorID:  req.ProfessorID,
		SubjectID:    req.SubjectID,
		AcademicYear: req.AcademicYear,
	}
	created, err := s.repo.Insert(ctx, assignment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	if !created {
		return nil, appErrors.ErrDuplicateAssignment
	}

	s.logger.Info("professor assigned",
		zap.String("professor_id", req.ProfessorID),
		zap.String("subject_id", req.SubjectID),
		zap.String("academic_year", req.AcademicYear),
	)
	return assignment, nil
}

// Unassign retires an assignment. The row is kept for grading history.
func (s *AssignmentService) Unassign(ctx context.Context, professorID, assignmentID string) error {
	if err := s.repo.Deactivate(ctx, professorID, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "active assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate assignment")
	}
	return nil
}

// ListByProfessor returns all assignments for a professor, newest year first.
func (s *AssignmentService) ListByProfessor(ctx context.Context, professorID string) ([]models.ProfessorAssignmentDetail, error) {
	assignments, err := s.repo.ListByProfessor(ctx, professorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// IsAssigned reports whether a professor actively teaches the subject in the
// given academic year.
func (s *AssignmentService) IsAssigned(ctx context.Context, professorID, subjectID, academicYear string) (bool, error) {
	assigned, err := s.repo.ExistsActive(ctx, professorID, subjectID, academicYear)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	return assigned, nil
}
