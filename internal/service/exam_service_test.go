package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type mockExamRepo struct {
	exams map[string]*models.Exam
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	if e, ok := m.exams[id]; ok {
		return &models.ExamDetail{Exam: *e}, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) ListByPeriod(ctx context.Context, periodID string) ([]models.ExamDetail, error) {
	out := make([]models.ExamDetail, 0)
	for _, e := range m.exams {
		if e.ExamPeriodID == periodID {
			out = append(out, models.ExamDetail{Exam: *e})
		}
	}
	return out, nil
}

func (m *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	if m.exams == nil {
		m.exams = make(map[string]*models.Exam)
	}
	exam.ID = "exam1"
	m.exams[exam.ID] = exam
	return nil
}

func (m *mockExamRepo) UpdateStatus(ctx context.Context, id string, status models.ExamStatus) error {
	e, ok := m.exams[id]
	if !ok {
		return sql.ErrNoRows
	}
	e.Status = status
	return nil
}

type mockInvalidator struct {
	invalidatedExam string
	invalidatedAt   time.Time
	count           int64
}

func (m *mockInvalidator) InvalidateByExam(ctx context.Context, examID string, at time.Time) (int64, error) {
	m.invalidatedExam = examID
	m.invalidatedAt = at
	return m.count, nil
}

func newExamFixture() (*ExamService, *mockExamRepo, *mockInvalidator) {
	repo := &mockExamRepo{}
	subjects := &mockSubjectReader{subjects: map[string]*models.Subject{
		"sub1": {ID: "sub1", Code: "CS101", Name: "Algorithms"},
	}}
	periods := &mockExamPeriodRepo{periods: map[string]*models.ExamPeriod{
		"per1": {
			ID:           "per1",
			AcademicYear: "2025/2026",
			Semester:     models.SemesterWinter,
			StartDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			EndDate:      time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		},
	}}
	invalidator := &mockInvalidator{count: 3}
	svc := NewExamService(repo, subjects, periods, invalidator, nil, validator.New(), zap.NewNop())
	return svc, repo, invalidator
}

func validExamRequest() CreateExamRequest {
	return CreateExamRequest{
		SubjectID:    "sub1",
		ExamPeriodID: "per1",
		ExamDate:     time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
		StartTime:    "09:00",
		DurationMins: 120,
		MaxPoints:    100,
	}
}

func TestCreateExam(t *testing.T) {
	svc, repo, _ := newExamFixture()

	exam, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusScheduled, exam.Status)
	assert.Len(t, repo.exams, 1)
}

func TestCreateExamOutOfPeriod(t *testing.T) {
	svc, _, _ := newExamFixture()

	req := validExamRequest()
	req.ExamDate = time.Date(2026, 2, 16, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrOutOfPeriod)
}

func TestCreateExamPeriodBoundaryInclusive(t *testing.T) {
	svc, _, _ := newExamFixture()

	req := validExamRequest()
	req.ExamDate = time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)
	_, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
}

func TestCreateExamUnknownSubject(t *testing.T) {
	svc, _, _ := newExamFixture()

	req := validExamRequest()
	req.SubjectID = "nope"
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrUnknownSubject)
}

func TestCreateExamUnknownPeriod(t *testing.T) {
	svc, _, _ := newExamFixture()

	req := validExamRequest()
	req.ExamPeriodID = "nope"
	_, err := svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrUnknownPeriod)
}

func TestTransitionLifecycle(t *testing.T) {
	svc, _, _ := newExamFixture()
	exam, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)

	updated, err := svc.Transition(context.Background(), exam.ID, models.ExamStatusActive)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusActive, updated.Status)

	updated, err = svc.Transition(context.Background(), exam.ID, models.ExamStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusCompleted, updated.Status)

	// COMPLETED is terminal.
	_, err = svc.Transition(context.Background(), exam.ID, models.ExamStatusCancelled)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStatus)
}

func TestTransitionSkippingStates(t *testing.T) {
	svc, _, _ := newExamFixture()
	exam, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), exam.ID, models.ExamStatusCompleted)
	assert.ErrorIs(t, err, appErrors.ErrInvalidStatus)
}

func TestCancelInvalidatesRegistrations(t *testing.T) {
	svc, _, invalidator := newExamFixture()
	exam, err := svc.Create(context.Background(), validExamRequest())
	require.NoError(t, err)

	updated, err := svc.Transition(context.Background(), exam.ID, models.ExamStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.ExamStatusCancelled, updated.Status)
	assert.Equal(t, exam.ID, invalidator.invalidatedExam)
	assert.False(t, invalidator.invalidatedAt.IsZero())
}

func TestTransitionUnknownExam(t *testing.T) {
	svc, _, _ := newExamFixture()

	_, err := svc.Transition(context.Background(), "nope", models.ExamStatusActive)
	assert.ErrorIs(t, err, appErrors.ErrUnknownExam)
}
