package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type studyProgramRepository interface {
	List(ctx context.Context, filter models.StudyProgramFilter) ([]models.StudyProgram, int, error)
	FindByID(ctx context.Context, id string) (*models.StudyProgram, error)
	ExistsByCodeOrName(ctx context.Context, code, name string) (bool, error)
	Create(ctx context.Context, program *models.StudyProgram) error
}

// CreateStudyProgramRequest describes a program creation payload.
type CreateStudyProgramRequest struct {
	Code          string `json:"code" validate:"required,max=16"`
	Name          string `json:"name" validate:"required,max=255"`
	FacultyID     string `json:"faculty_id" validate:"required"`
	DurationYears int    `json:"duration_years" validate:"required,min=1,max=6"`
}

// ProgramService manages the study program catalog.
type ProgramService struct {
	repo      studyProgramRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs ProgramService.
func NewProgramService(repo studyProgramRepository, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, validator: validate, logger: logger}
}

// Create registers a new study program. Code and name are unique.
func (s *ProgramService) Create(ctx context.Context, req CreateStudyProgramRequest) (*models.StudyProgram, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid study program payload")
	}

	taken, err := s.repo.ExistsByCodeOrName(ctx, req.Code, req.Name)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check study program uniqueness")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "study program code or name already exists")
	}

	program := &models.StudyProgram{
		Code:          req.Code,
		Name:          req.Name,
		FacultyID:     req.FacultyID,
		DurationYears: req.DurationYears,
	}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create study program")
	}

	s.logger.Info("study program created", zap.String("code", program.Code), zap.String("id", program.ID))
	return program, nil
}

// Get returns a single study program.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.StudyProgram, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study program")
	}
	return program, nil
}

// List returns programs matching the filter plus the total count.
func (s *ProgramService) List(ctx context.Context, filter models.StudyProgramFilter) ([]models.StudyProgram, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list study programs")
	}
	return programs, total, nil
}
