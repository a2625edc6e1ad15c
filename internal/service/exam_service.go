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

type examRepository interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error)
	ListByPeriod(ctx context.Context, periodID string) ([]models.ExamDetail, error)
	Create(ctx context.Context, exam *models.Exam) error
	UpdateStatus(ctx context.Context, id string, status models.ExamStatus) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type periodReader interface {
	FindByID(ctx context.Context, id string) (*models.ExamPeriod, error)
}

type registrationInvalidator interface {
	InvalidateByExam(ctx context.Context, examID string, at time.Time) (int64, error)
}

// CreateExamRequest describes the exam creation payload.
type CreateExamRequest struct {
	SubjectID    string    `json:"subject_id" validate:"required"`
	ExamPeriodID string    `json:"exam_period_id" validate:"required"`
	ExamDate     time.Time `json:"exam_date" validate:"required"`
	StartTime    string    `json:"start_time" validate:"required"`
	DurationMins int       `json:"duration_mins" validate:"required,gt=0"`
	MaxPoints    float64   `json:"max_points" validate:"required,gt=0"`
}

// ExamService manages exam scheduling and lifecycle transitions.
type ExamService struct {
	repo          examRepository
	subjects      subjectReader
	periods       periodReader
	registrations registrationInvalidator
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewExamService constructs ExamService.
func NewExamService(repo examRepository, subjects subjectReader, periods periodReader, registrations registrationInvalidator, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{
		repo:          repo,
		subjects:      subjects,
		periods:       periods,
		registrations: registrations,
		cache:         cache,
		validator:     validate,
		logger:        logger,
	}
}

// Create schedules an exam inside a period, enforcing temporal containment.
func (s *ExamService) Create(ctx context.Context, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownSubject
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	period, err := s.periods.FindByID(ctx, req.ExamPeriodID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownPeriod
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam period")
	}
	if !period.Contains(req.ExamDate) {
		return nil, appErrors.Clone(appErrors.ErrOutOfPeriod, "exam date must fall within the period window")
	}

	exam := &models.Exam{
		SubjectID:    req.SubjectID,
		ExamPeriodID: req.ExamPeriodID,
		ExamDate:     req.ExamDate,
		StartTime:    req.StartTime,
		DurationMins: req.DurationMins,
		MaxPoints:    req.MaxPoints,
		Status:       models.ExamStatusScheduled,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	s.invalidateAvailableCache(ctx)
	return exam, nil
}

// Get returns an exam with subject and period context.
func (s *ExamService) Get(ctx context.Context, id string) (*models.ExamDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownExam
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return detail, nil
}

// ListByPeriod returns exams of a period.
func (s *ExamService) ListByPeriod(ctx context.Context, periodID string) ([]models.ExamDetail, error) {
	exams, err := s.repo.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// Transition moves an exam along its lifecycle, rejecting invalid moves.
// Cancelling cascade-invalidates the exam's registrations.
func (s *ExamService) Transition(ctx context.Context, id string, target models.ExamStatus) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownExam
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if !exam.Status.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "cannot move exam from "+string(exam.Status)+" to "+string(target))
	}
	if err := s.repo.UpdateStatus(ctx, id, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam status")
	}
	exam.Status = target

	if target == models.ExamStatusCancelled && s.registrations != nil {
		invalidated, err := s.registrations.InvalidateByExam(ctx, id, time.Now().UTC())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to invalidate registrations")
		}
		s.logger.Info("exam cancelled",
			zap.String("exam_id", id),
			zap.Int64("registrations_invalidated", invalidated),
		)
	}
	s.invalidateAvailableCache(ctx)
	return exam, nil
}

func (s *ExamService) invalidateAvailableCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, availableExamKeyPattern); err != nil {
		s.logger.Warn("failed to invalidate available-exam cache", zap.Error(err))
	}
}
