package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type mockGradeStore struct {
	grades     map[string]models.Grade
	transcript []models.TranscriptRow
}

func gradeKey(studentID, examID string, attempt int) string {
	return fmt.Sprintf("%s|%s|%d", studentID, examID, attempt)
}

func (m *mockGradeStore) Insert(ctx context.Context, grade *models.Grade) (bool, error) {
	if m.grades == nil {
		m.grades = make(map[string]models.Grade)
	}
	key := gradeKey(grade.StudentID, grade.ExamID, grade.Attempt)
	if _, ok := m.grades[key]; ok {
		return false, nil
	}
	m.grades[key] = *grade
	return true, nil
}

func (m *mockGradeStore) FindByPairAndAttempt(ctx context.Context, studentID, examID string, attempt int) (*models.Grade, error) {
	if g, ok := m.grades[gradeKey(studentID, examID, attempt)]; ok {
		return &g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeStore) ExistsForAttempt(ctx context.Context, studentID, examID string, attempt int) (bool, error) {
	_, ok := m.grades[gradeKey(studentID, examID, attempt)]
	return ok, nil
}

func (m *mockGradeStore) ListTranscript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	return m.transcript, nil
}

type mockRegistrationStore struct {
	registrations map[string]*models.ExamRegistration
}

func (m *mockRegistrationStore) FindByStudentAndExam(ctx context.Context, studentID, examID string) (*models.ExamRegistration, error) {
	if r, ok := m.registrations[studentID+"|"+examID]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

type mockAssignmentStore struct {
	assigned map[string]bool
}

func (m *mockAssignmentStore) ExistsActive(ctx context.Context, professorID, subjectID, academicYear string) (bool, error) {
	return m.assigned[professorID+"|"+subjectID+"|"+academicYear], nil
}

type mockExamStore struct {
	exams map[string]*models.ExamDetail
}

func (m *mockExamStore) FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func gradableExam(examDate time.Time) *models.ExamDetail {
	return &models.ExamDetail{
		Exam: models.Exam{
			ID:        "exam1",
			SubjectID: "sub1",
			ExamDate:  examDate,
			MaxPoints: 100,
			Status:    models.ExamStatusCompleted,
		},
		SubjectCode:  "CS101",
		SubjectName:  "Algorithms",
		AcademicYear: "2025/2026",
	}
}

func newGradingFixture(examDate time.Time) (*GradingService, *mockGradeStore) {
	grades := &mockGradeStore{}
	registrations := &mockRegistrationStore{registrations: map[string]*models.ExamRegistration{
		"stu1|exam1": {ID: "reg1", StudentID: "stu1", ExamID: "exam1", Attempt: 2},
	}}
	assignments := &mockAssignmentStore{assigned: map[string]bool{"prof1|sub1|2025/2026": true}}
	exams := &mockExamStore{exams: map[string]*models.ExamDetail{"exam1": gradableExam(examDate)}}
	svc := NewGradingService(grades, registrations, assignments, exams, 15, validator.New(), zap.NewNop())
	return svc, grades
}

func TestDeriveGrade(t *testing.T) {
	cases := []struct {
		points float64
		grade  int
		passed bool
	}{
		{0, 5, false},
		{49.9, 5, false},
		{50, 6, true},
		{64, 7, true},
		{89, 9, true},
		{90, 10, true},
		{100, 10, true},
	}
	for _, tc := range cases {
		grade, passed := DeriveGrade(tc.points)
		assert.Equal(t, tc.grade, grade, "points=%v", tc.points)
		assert.Equal(t, tc.passed, passed, "points=%v", tc.points)
	}
}

func TestGradeExamRecordsGrade(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, grades := newGradingFixture(examDate)

	now := examDate.AddDate(0, 0, 3)
	grade, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 72,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, grade.Attempt)
	assert.Equal(t, 8, grade.GradeValue)
	assert.True(t, grade.Passed)
	assert.Equal(t, now, grade.GradedAt)
	assert.Len(t, grades.grades, 1)
}

func TestGradeExamWindowBoundary(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

	// Exactly at the deadline the window is still open.
	svc, _ := newGradingFixture(examDate)
	_, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 60,
	}, examDate.AddDate(0, 0, 15))
	require.NoError(t, err)

	// One second past the deadline it is not.
	svc, _ = newGradingFixture(examDate)
	_, err = svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 60,
	}, examDate.AddDate(0, 0, 15).Add(time.Second))
	assert.ErrorIs(t, err, appErrors.ErrWindowExpired)
}

func TestGradeExamBeforeExamDate(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)

	_, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 60,
	}, examDate.Add(-time.Hour))
	assert.ErrorIs(t, err, appErrors.ErrInvalidStatus)
}

func TestGradeExamNotAssigned(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)

	_, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof2", StudentID: "stu1", ExamID: "exam1", Points: 60,
	}, examDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, appErrors.ErrNotAssigned)
}

func TestGradeExamNotRegistered(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)

	_, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu2", ExamID: "exam1", Points: 60,
	}, examDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, appErrors.ErrNotRegistered)
}

func TestGradeExamInvalidatedRegistration(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	invalidated := examDate.Add(-time.Hour)
	grades := &mockGradeStore{}
	registrations := &mockRegistrationStore{registrations: map[string]*models.ExamRegistration{
		"stu1|exam1": {ID: "reg1", StudentID: "stu1", ExamID: "exam1", Attempt: 1, InvalidatedAt: &invalidated},
	}}
	assignments := &mockAssignmentStore{assigned: map[string]bool{"prof1|sub1|2025/2026": true}}
	exams := &mockExamStore{exams: map[string]*models.ExamDetail{"exam1": gradableExam(examDate)}}
	svc := NewGradingService(grades, registrations, assignments, exams, 15, validator.New(), zap.NewNop())

	_, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 60,
	}, examDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, appErrors.ErrNotRegistered)
}

func TestGradeExamDuplicateAttempt(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)
	now := examDate.AddDate(0, 0, 2)

	req := GradeExamRequest{ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 60}
	_, err := svc.GradeExam(context.Background(), req, now)
	require.NoError(t, err)

	// A second entry for the same attempt must fail, even with other points.
	req.Points = 95
	_, err = svc.GradeExam(context.Background(), req, now)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyGraded)
}

func TestGradeExamPointsAboveMax(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)

	_, err := svc.GradeExam(context.Background(), GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 101,
	}, examDate.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestAttemptStateLifecycle(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)
	ctx := context.Background()

	state, err := svc.AttemptState(ctx, "stu1", "exam1", examDate.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, models.AttemptStateRegistered, state)

	state, err = svc.AttemptState(ctx, "stu1", "exam1", examDate.AddDate(0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, models.AttemptStateGradable, state)

	state, err = svc.AttemptState(ctx, "stu1", "exam1", examDate.AddDate(0, 0, 16))
	require.NoError(t, err)
	assert.Equal(t, models.AttemptStateExpired, state)

	_, err = svc.GradeExam(ctx, GradeExamRequest{
		ProfessorID: "prof1", StudentID: "stu1", ExamID: "exam1", Points: 55,
	}, examDate.AddDate(0, 0, 3))
	require.NoError(t, err)

	state, err = svc.AttemptState(ctx, "stu1", "exam1", examDate.AddDate(0, 0, 16))
	require.NoError(t, err)
	assert.Equal(t, models.AttemptStateGraded, state)
}

func TestDaysRemainingToGrade(t *testing.T) {
	examDate := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	svc, _ := newGradingFixture(examDate)
	exam := &models.Exam{ExamDate: examDate}

	assert.Equal(t, 15, svc.DaysRemainingToGrade(exam, examDate))
	assert.Equal(t, 5, svc.DaysRemainingToGrade(exam, examDate.AddDate(0, 0, 10)))
	assert.Less(t, svc.DaysRemainingToGrade(exam, examDate.AddDate(0, 0, 16)), 0)
}

func TestExportTranscriptCSV(t *testing.T) {
	grades := &mockGradeStore{transcript: []models.TranscriptRow{
		{SubjectCode: "CS101", SubjectName: "Algorithms", ECTS: 6, AcademicYear: "2025/2026", Attempt: 1, Points: 72, GradeValue: 8, Passed: true},
	}}
	svc := NewGradingService(grades, &mockRegistrationStore{}, &mockAssignmentStore{}, &mockExamStore{}, 15, validator.New(), zap.NewNop())

	payload, filename, err := svc.ExportTranscript(context.Background(), "stu1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "transcript-stu1.csv", filename)
	content := string(payload)
	assert.True(t, strings.HasPrefix(content, "Subject,Name,ECTS,Year,Attempt,Points,Grade,Passed"))
	assert.Contains(t, content, "CS101,Algorithms,6,2025/2026,1,72.0,8,yes")
}

func TestExportTranscriptPDF(t *testing.T) {
	grades := &mockGradeStore{transcript: []models.TranscriptRow{
		{SubjectCode: "CS101", SubjectName: "Algorithms", ECTS: 6, AcademicYear: "2025/2026", Attempt: 1, Points: 72, GradeValue: 8, Passed: true},
	}}
	svc := NewGradingService(grades, &mockRegistrationStore{}, &mockAssignmentStore{}, &mockExamStore{}, 15, validator.New(), zap.NewNop())

	payload, filename, err := svc.ExportTranscript(context.Background(), "stu1", "pdf")
	require.NoError(t, err)
	assert.Equal(t, "transcript-stu1.pdf", filename)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}
