package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

const availableExamKeyPattern = "exams:available:*"

type registrationRepository interface {
	Insert(ctx context.Context, registration *models.ExamRegistration) (bool, error)
	FindByStudentAndExam(ctx context.Context, studentID, examID string) (*models.ExamRegistration, error)
	CountBySubject(ctx context.Context, studentID, subjectID string) (int, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ExamRegistrationDetail, error)
}

type examDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error)
	ListOpenForRegistration(ctx context.Context, now time.Time) ([]models.ExamDetail, error)
}

type eligibilityChecker interface {
	ExistsActive(ctx context.Context, studentID, subjectID, academicYear string) (bool, error)
}

// RegisterRequest describes the exam registration payload.
type RegisterRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	ExamID    string `json:"exam_id" validate:"required"`
}

// RegistrationService enforces the exam-registration invariants.
type RegistrationService struct {
	registrations registrationRepository
	exams         examDetailReader
	courses       eligibilityChecker
	cache         *CacheService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(registrations registrationRepository, exams examDetailReader, courses eligibilityChecker, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrationService{
		registrations: registrations,
		exams:         exams,
		courses:       courses,
		cache:         cache,
		validator:     validate,
		logger:        logger,
	}
}

// Register creates an exam registration for the student. The now argument is
// read once per call; every window comparison uses it. The unique constraint
// on (student_id, exam_id) decides the winner under concurrent duplicates.
func (s *RegistrationService) Register(ctx context.Context, req RegisterRequest, now time.Time) (*models.ExamRegistration, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	exam, err := s.exams.FindDetailByID(ctx, req.ExamID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownExam
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if exam.Status != models.ExamStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrRegistrationClosed, "exam is not open for registration")
	}

	period := models.ExamPeriod{RegistrationStart: exam.RegistrationStart, RegistrationEnd: exam.RegistrationEnd}
	if !period.RegistrationOpen(now) {
		return nil, appErrors.ErrRegistrationClosed
	}

	eligible, err := s.courses.ExistsActive(ctx, req.StudentID, exam.SubjectID, exam.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check eligibility")
	}
	if !eligible {
		return nil, appErrors.ErrNotEnrolled
	}

	attempts, err := s.registrations.CountBySubject(ctx, req.StudentID, exam.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count prior attempts")
	}

	registration := &models.ExamRegistration{
		StudentID:    req.StudentID,
		ExamID:       req.ExamID,
		Attempt:      attempts + 1,
		RegisteredAt: now,
	}
	created, err := s.registrations.Insert(ctx, registration)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create registration")
	}
	if !created {
		return nil, appErrors.ErrAlreadyRegistered
	}

	s.invalidateAvailable(ctx, req.StudentID)
	s.logger.Info("exam registration created",
		zap.String("student_id", req.StudentID),
		zap.String("exam_id", req.ExamID),
		zap.Int("attempt", registration.Attempt),
	)
	return registration, nil
}

// ListRegistered returns the student's valid registrations.
func (s *RegistrationService) ListRegistered(ctx context.Context, studentID string) ([]models.ExamRegistrationDetail, error) {
	registrations, err := s.registrations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	return registrations, nil
}

// ListAvailable returns exams the student could register for right now:
// periods with an open registration window, an active course enrollment for
// the subject, and no existing registration.
func (s *RegistrationService) ListAvailable(ctx context.Context, studentID string, now time.Time) ([]models.ExamDetail, error) {
	cacheKey := availableExamCacheKey(studentID)
	if s.cache.Enabled() {
		var cached []models.ExamDetail
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	open, err := s.exams.ListOpenForRegistration(ctx, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list open exams")
	}

	registered, err := s.registrations.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list registrations")
	}
	taken := make(map[string]struct{}, len(registered))
	for _, reg := range registered {
		taken[reg.ExamID] = struct{}{}
	}

	available := make([]models.ExamDetail, 0, len(open))
	for _, exam := range open {
		if _, ok := taken[exam.ID]; ok {
			continue
		}
		eligible, err := s.courses.ExistsActive(ctx, studentID, exam.SubjectID, exam.AcademicYear)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check eligibility")
		}
		if eligible {
			available = append(available, exam)
		}
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, cacheKey, available, 0); err != nil {
			s.logger.Warn("failed to cache available exams", zap.Error(err))
		}
	}
	return available, nil
}

func (s *RegistrationService) invalidateAvailable(ctx context.Context, studentID string) {
	if !s.cache.Enabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, availableExamCacheKey(studentID)); err != nil {
		s.logger.Warn("failed to invalidate available-exam cache", zap.Error(err))
	}
}

func availableExamCacheKey(studentID string) string {
	return fmt.Sprintf("exams:available:%s", studentID)
}
