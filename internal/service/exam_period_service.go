package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type examPeriodRepository interface {
	List(ctx context.Context, academicYear string, semester models.SemesterType) ([]models.ExamPeriod, error)
	FindByID(ctx context.Context, id string) (*models.ExamPeriod, error)
	ListActive(ctx context.Context, now time.Time) ([]models.ExamPeriod, error)
	Create(ctx context.Context, period *models.ExamPeriod) error
}

// CreateExamPeriodRequest describes the period creation payload.
type CreateExamPeriodRequest struct {
	Name              string    `json:"name" validate:"required"`
	Semester          string    `json:"semester" validate:"required,oneof=WINTER SUMMER"`
	AcademicYear      string    `json:"academic_year" validate:"required"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
	RegistrationStart time.Time `json:"registration_start" validate:"required"`
	RegistrationEnd   time.Time `json:"registration_end" validate:"required"`
}

// ExamPeriodService manages exam period scheduling.
type ExamPeriodService struct {
	repo      examPeriodRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamPeriodService constructs ExamPeriodService.
func NewExamPeriodService(repo examPeriodRepository, validate *validator.Validate, logger *zap.Logger) *ExamPeriodService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamPeriodService{repo: repo, validator: validate, logger: logger}
}

// Create validates window containment and persists a new period. Malformed
// windows are rejected, never auto-corrected.
func (s *ExamPeriodService) Create(ctx context.Context, req CreateExamPeriodRequest) (*models.ExamPeriod, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam period payload")
	}

	period := &models.ExamPeriod{
		Name:              req.Name,
		Semester:          models.SemesterType(req.Semester),
		AcademicYear:      req.AcademicYear,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		RegistrationStart: req.RegistrationStart,
		RegistrationEnd:   req.RegistrationEnd,
	}
	if !period.WindowConsistent() {
		return nil, appErrors.Clone(appErrors.ErrInvalidWindow, "registration window must close before the period ends and both windows must be ordered")
	}
	if err := s.repo.Create(ctx, period); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam period")
	}
	s.logger.Info("exam period created",
		zap.String("period_id", period.ID),
		zap.String("academic_year", period.AcademicYear),
		zap.String("semester", string(period.Semester)),
	)
	return period, nil
}

// Get returns a period by ID.
func (s *ExamPeriodService) Get(ctx context.Context, id string) (*models.ExamPeriod, error) {
	period, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownPeriod
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam period")
	}
	return period, nil
}

// List returns periods scoped by year and semester.
func (s *ExamPeriodService) List(ctx context.Context, academicYear string, semester models.SemesterType) ([]models.ExamPeriod, error) {
	periods, err := s.repo.List(ctx, academicYear, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam periods")
	}
	return periods, nil
}

// ActivePeriods returns periods whose outer window contains now.
func (s *ExamPeriodService) ActivePeriods(ctx context.Context, now time.Time) ([]models.ExamPeriod, error) {
	periods, err := s.repo.ListActive(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active periods")
	}
	return periods, nil
}
