package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type studentEnrollmentRepository interface {
	List(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollment, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error)
	FindByTriple(ctx context.Context, studentID, programID, academicYear string) (*models.StudentEnrollment, error)
	Create(ctx context.Context, enrollment *models.StudentEnrollment) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error
	UpdateYearOfStudy(ctx context.Context, id string, year int) error
}

type courseEnrollmentRepository interface {
	Insert(ctx context.Context, enrollment *models.CourseEnrollment) (bool, error)
	ExistsActive(ctx context.Context, studentID, subjectID, academicYear string) (bool, error)
	Deactivate(ctx context.Context, studentID, subjectID, academicYear string) error
	ListActiveByStudent(ctx context.Context, studentID, academicYear string) ([]models.CourseEnrollmentDetail, error)
}

type programReader interface {
	FindByID(ctx context.Context, id string) (*models.StudyProgram, error)
}

// EnrollInProgramRequest describes program enrollment payload.
type EnrollInProgramRequest struct {
	StudentID      string `json:"student_id" validate:"required"`
	StudyProgramID string `json:"study_program_id" validate:"required"`
	AcademicYear   string `json:"academic_year" validate:"required"`
	YearOfStudy    int    `json:"year_of_study" validate:"required,gte=1"`
}

// EnrollInCourseRequest describes course enrollment payload.
type EnrollInCourseRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	SubjectID    string `json:"subject_id" validate:"required"`
	AcademicYear string `json:"academic_year" validate:"required"`
}

// EnrollmentService maintains per-student program and course membership.
type EnrollmentService struct {
	programs  studentEnrollmentRepository
	courses   courseEnrollmentRepository
	catalog   programReader
	subjects  subjectReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(programs studentEnrollmentRepository, courses courseEnrollmentRepository, catalog programReader, subjects subjectReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		programs:  programs,
		courses:   courses,
		catalog:   catalog,
		subjects:  subjects,
		validator: validate,
		logger:    logger,
	}
}

// EnrollInProgram registers a student into a study program for an academic
// year. The call is idempotent when an identical active row already exists;
// a conflicting row requires an explicit status update instead.
func (s *EnrollmentService) EnrollInProgram(ctx context.Context, req EnrollInProgramRequest) (*models.StudentEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid program enrollment payload")
	}
	if _, err := s.catalog.FindByID(ctx, req.StudyProgramID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "study program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load study program")
	}

	enrollment := &models.StudentEnrollment{
		StudentID:      req.StudentID,
		StudyProgramID: req.StudyProgramID,
		AcademicYear:   req.AcademicYear,
		YearOfStudy:    req.YearOfStudy,
		Status:         models.EnrollmentStatusActive,
	}
	created, err := s.programs.Create(ctx, enrollment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program enrollment")
	}
	if created {
		return enrollment, nil
	}

	// The unique triple already exists; re-read to decide between idempotent
	// success and a genuine conflict.
	existing, err := s.programs.FindByTriple(ctx, req.StudentID, req.StudyProgramID, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program enrollment")
	}
	if existing.Status == models.EnrollmentStatusActive && existing.YearOfStudy == req.YearOfStudy {
		return existing, nil
	}
	return nil, appErrors.Clone(appErrors.ErrDuplicateEnrollment, "enrollment exists with conflicting status; update it explicitly")
}

// UpdateProgramStatus moves a program enrollment to a new lifecycle status.
func (s *EnrollmentService) UpdateProgramStatus(ctx context.Context, id string, target models.EnrollmentStatus) (*models.StudentEnrollment, error) {
	if !target.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown enrollment status")
	}
	enrollment, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program enrollment")
	}
	if !enrollment.Status.CanTransitionTo(target) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "cannot move enrollment from "+string(enrollment.Status)+" to "+string(target))
	}
	if err := s.programs.UpdateStatus(ctx, id, target); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update enrollment status")
	}
	enrollment.Status = target
	return enrollment, nil
}

// AdvanceYear progresses the student's year of study on an active enrollment.
func (s *EnrollmentService) AdvanceYear(ctx context.Context, id string) (*models.StudentEnrollment, error) {
	enrollment, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program enrollment")
	}
	if enrollment.Status != models.EnrollmentStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "only active enrollments can progress")
	}
	next := enrollment.YearOfStudy + 1
	if err := s.programs.UpdateYearOfStudy(ctx, id, next); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to advance year of study")
	}
	enrollment.YearOfStudy = next
	return enrollment, nil
}

// ListProgramEnrollments returns program enrollments with pagination metadata.
func (s *EnrollmentService) ListProgramEnrollments(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollment, *models.Pagination, error) {
	enrollments, total, err := s.programs.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list program enrollments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return enrollments, pagination, nil
}

// EnrollInCourse creates an active course enrollment for the triple. The
// partial unique constraint decides the winner under concurrent attempts.
func (s *EnrollmentService) EnrollInCourse(ctx context.Context, req EnrollInCourseRequest) (*models.CourseEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course enrollment payload")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownSubject
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	enrollment := &models.CourseEnrollment{
		StudentID:    req.StudentID,
		SubjectID:    req.SubjectID,
		AcademicYear: req.AcademicYear,
	}
	created, err := s.courses.Insert(ctx, enrollment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course enrollment")
	}
	if !created {
		return nil, appErrors.ErrAlreadyEnrolled
	}
	return enrollment, nil
}

// DropCourse deactivates the active course enrollment for the triple.
func (s *EnrollmentService) DropCourse(ctx context.Context, studentID, subjectID, academicYear string) error {
	if err := s.courses.Deactivate(ctx, studentID, subjectID, academicYear); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "no active course enrollment to drop")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to drop course")
	}
	return nil
}

// IsEligibleForSubject reports whether the student holds an active course
// enrollment for the subject in the given academic year. This predicate
// gates exam registration.
func (s *EnrollmentService) IsEligibleForSubject(ctx context.Context, studentID, subjectID, academicYear string) (bool, error) {
	eligible, err := s.courses.ExistsActive(ctx, studentID, subjectID, academicYear)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course eligibility")
	}
	return eligible, nil
}

// ListCourses returns the student's active course enrollments for a year.
func (s *EnrollmentService) ListCourses(ctx context.Context, studentID, academicYear string) ([]models.CourseEnrollmentDetail, error) {
	courses, err := s.courses.ListActiveByStudent(ctx, studentID, academicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list course enrollments")
	}
	return courses, nil
}
