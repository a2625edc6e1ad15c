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
	"github.com/univ-is/academic-records-api/pkg/export"
)

type gradeRepository interface {
	Insert(ctx context.Context, grade *models.Grade) (bool, error)
	FindByPairAndAttempt(ctx context.Context, studentID, examID string, attempt int) (*models.Grade, error)
	ExistsForAttempt(ctx context.Context, studentID, examID string, attempt int) (bool, error)
	ListTranscript(ctx context.Context, studentID string) ([]models.TranscriptRow, error)
}

type registrationReader interface {
	FindByStudentAndExam(ctx context.Context, studentID, examID string) (*models.ExamRegistration, error)
}

type assignmentChecker interface {
	ExistsActive(ctx context.Context, professorID, subjectID, academicYear string) (bool, error)
}

type gradingExamReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error)
}

// GradeExamRequest describes a grade entry payload.
type GradeExamRequest struct {
	ProfessorID string  `json:"professor_id" validate:"required"`
	StudentID   string  `json:"student_id" validate:"required"`
	ExamID      string  `json:"exam_id" validate:"required"`
	Points      float64 `json:"points" validate:"gte=0"`
}

// GradingService records authoritative grades under the bounded grading window.
type GradingService struct {
	grades            gradeRepository
	registrations     registrationReader
	assignments       assignmentChecker
	exams             gradingExamReader
	gradingWindowDays int
	csv               *export.CSVExporter
	pdf               *export.PDFExporter
	validator         *validator.Validate
	logger            *zap.Logger
}

// NewGradingService constructs GradingService. gradingWindowDays bounds how
// long after the exam date grades may still be entered; it defaults to 15.
func NewGradingService(grades gradeRepository, registrations registrationReader, assignments assignmentChecker, exams gradingExamReader, gradingWindowDays int, validate *validator.Validate, logger *zap.Logger) *GradingService {
	if gradingWindowDays <= 0 {
		gradingWindowDays = 15
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradingService{
		grades:            grades,
		registrations:     registrations,
		assignments:       assignments,
		exams:             exams,
		gradingWindowDays: gradingWindowDays,
		csv:               export.NewCSVExporter(),
		pdf:               export.NewPDFExporter(),
		validator:         validate,
		logger:            logger,
	}
}

// DeriveGrade maps points to the numeric grade scale: floor(points/10)+1
// clamped to [5, 10]. Passing starts at grade 6. The mapping is pure, total
// over [0, maxPoints] and monotonic in points.
func DeriveGrade(points float64) (grade int, passed bool) {
	grade = int(points/10) + 1
	if grade < 5 {
		grade = 5
	}
	if grade > 10 {
		grade = 10
	}
	return grade, grade >= 6
}

// GradeExam records at most one grade per (student, exam) attempt. The now
// argument is read once per call; the grading deadline never moves.
func (s *GradingService) GradeExam(ctx context.Context, req GradeExamRequest, now time.Time) (*models.Grade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	exam, err := s.exams.FindDetailByID(ctx, req.ExamID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrUnknownExam
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if req.Points > exam.MaxPoints {
		return nil, appErrors.Clone(appErrors.ErrValidation, "points exceed exam maximum")
	}
	if exam.Status == models.ExamStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrUnknownExam, "exam was cancelled")
	}

	assigned, err := s.assignments.ExistsActive(ctx, req.ProfessorID, exam.SubjectID, exam.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment")
	}
	if !assigned {
		return nil, appErrors.ErrNotAssigned
	}

	registration, err := s.registrations.FindByStudentAndExam(ctx, req.StudentID, req.ExamID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrNotRegistered
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}
	if registration.InvalidatedAt != nil {
		return nil, appErrors.ErrNotRegistered
	}

	if now.Before(exam.ExamDate) {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "exam has not taken place yet")
	}
	if now.After(s.gradingDeadline(exam.ExamDate)) {
		return nil, appErrors.ErrWindowExpired
	}

	gradeValue, passed := DeriveGrade(req.Points)
	grade := &models.Grade{
		StudentID:   req.StudentID,
		ExamID:      req.ExamID,
		ProfessorID: req.ProfessorID,
		Attempt:     registration.Attempt,
		Points:      req.Points,
		GradeValue:  gradeValue,
		Passed:      passed,
		GradedAt:    now,
	}
	created, err := s.grades.Insert(ctx, grade)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}
	if !created {
		return nil, appErrors.ErrAlreadyGraded
	}

	s.logger.Info("grade recorded",
		zap.String("student_id", req.StudentID),
		zap.String("exam_id", req.ExamID),
		zap.Int("attempt", grade.Attempt),
		zap.Int("grade", gradeValue),
		zap.Bool("passed", passed),
	)
	return grade, nil
}

// DaysRemainingToGrade reports how many whole days remain in the grading
// window. A negative value means the window has expired.
func (s *GradingService) DaysRemainingToGrade(exam *models.Exam, now time.Time) int {
	elapsed := int(now.Sub(exam.ExamDate).Hours() / 24)
	return s.gradingWindowDays - elapsed
}

// AttemptState derives where a (student, exam) attempt sits in the grading
// lifecycle from the registration, grade presence, exam date and now.
func (s *GradingService) AttemptState(ctx context.Context, studentID, examID string, now time.Time) (models.AttemptState, error) {
	exam, err := s.exams.FindDetailByID(ctx, examID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.ErrUnknownExam
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	registration, err := s.registrations.FindByStudentAndExam(ctx, studentID, examID)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", appErrors.ErrNotRegistered
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registration")
	}

	graded, err := s.grades.ExistsForAttempt(ctx, studentID, examID, registration.Attempt)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check grade")
	}
	if graded {
		return models.AttemptStateGraded, nil
	}
	if now.Before(exam.ExamDate) {
		return models.AttemptStateRegistered, nil
	}
	if now.After(s.gradingDeadline(exam.ExamDate)) {
		return models.AttemptStateExpired, nil
	}
	return models.AttemptStateGradable, nil
}

// Transcript returns the student's graded attempts.
func (s *GradingService) Transcript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	rows, err := s.grades.ListTranscript(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}
	return rows, nil
}

// ExportTranscript renders the transcript as CSV or PDF bytes.
func (s *GradingService) ExportTranscript(ctx context.Context, studentID, format string) ([]byte, string, error) {
	rows, err := s.Transcript(ctx, studentID)
	if err != nil {
		return nil, "", err
	}
	data := transcriptDataset(rows)
	switch format {
	case "pdf":
		payload, err := s.pdf.Render(data, "Academic Transcript", fmt.Sprintf("Student %s", studentID))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript pdf")
		}
		return payload, fmt.Sprintf("transcript-%s.pdf", studentID), nil
	default:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render transcript csv")
		}
		return payload, fmt.Sprintf("transcript-%s.csv", studentID), nil
	}
}

func (s *GradingService) gradingDeadline(examDate time.Time) time.Time {
	return examDate.AddDate(0, 0, s.gradingWindowDays)
}

func transcriptDataset(rows []models.TranscriptRow) export.Dataset {
	headers := []string{"Subject", "Name", "ECTS", "Year", "Attempt", "Points", "Grade", "Passed"}
	data := export.Dataset{Headers: headers, Rows: make([]map[string]string, 0, len(rows))}
	for _, row := range rows {
		passed := "no"
		if row.Passed {
			passed = "yes"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Subject": row.SubjectCode,
			"Name":    row.SubjectName,
			"ECTS":    fmt.Sprintf("%d", row.ECTS),
			"Year":    row.AcademicYear,
			"Attempt": fmt.Sprintf("%d", row.Attempt),
			"Points":  fmt.Sprintf("%.1f", row.Points),
			"Grade":   fmt.Sprintf("%d", row.GradeValue),
			"Passed":  passed,
		})
	}
	return data
}
