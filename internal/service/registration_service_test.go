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

type mockRegistrationRepo struct {
	registrations map[string]*models.ExamRegistration
	subjectOf     map[string]string
}

func (m *mockRegistrationRepo) Insert(ctx context.Context, registration *models.ExamRegistration) (bool, error) {
	if m.registrations == nil {
		m.registrations = make(map[string]*models.ExamRegistration)
	}
	key := registration.StudentID + "|" + registration.ExamID
	if _, ok := m.registrations[key]; ok {
		return false, nil
	}
	m.registrations[key] = registration
	return true, nil
}

func (m *mockRegistrationRepo) FindByStudentAndExam(ctx context.Context, studentID, examID string) (*models.ExamRegistration, error) {
	if r, ok := m.registrations[studentID+"|"+examID]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRegistrationRepo) CountBySubject(ctx context.Context, studentID, subjectID string) (int, error) {
	count := 0
	for _, reg := range m.registrations {
		if reg.StudentID == studentID && m.subjectOf[reg.ExamID] == subjectID && reg.InvalidatedAt == nil {
			count++
		}
	}
	return count, nil
}

func (m *mockRegistrationRepo) ListByStudent(ctx context.Context, studentID string) ([]models.ExamRegistrationDetail, error) {
	out := make([]models.ExamRegistrationDetail, 0)
	for _, reg := range m.registrations {
		if reg.StudentID == studentID && reg.InvalidatedAt == nil {
			out = append(out, models.ExamRegistrationDetail{ExamRegistration: *reg})
		}
	}
	return out, nil
}

type mockExamCatalog struct {
	exams map[string]*models.ExamDetail
}

func (m *mockExamCatalog) FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamCatalog) ListOpenForRegistration(ctx context.Context, now time.Time) ([]models.ExamDetail, error) {
	open := make([]models.ExamDetail, 0)
	for _, e := range m.exams {
		period := models.ExamPeriod{RegistrationStart: e.RegistrationStart, RegistrationEnd: e.RegistrationEnd}
		if e.Status == models.ExamStatusScheduled && period.RegistrationOpen(now) {
			open = append(open, *e)
		}
	}
	return open, nil
}

type mockCourseEligibility struct {
	active map[string]bool
}

func (m *mockCourseEligibility) ExistsActive(ctx context.Context, studentID, subjectID, academicYear string) (bool, error) {
	return m.active[studentID+"|"+subjectID+"|"+academicYear], nil
}

func openExam(id, subjectID string, regStart, regEnd time.Time) *models.ExamDetail {
	return &models.ExamDetail{
		Exam: models.Exam{
			ID:        id,
			SubjectID: subjectID,
			ExamDate:  regEnd.AddDate(0, 0, 7),
			MaxPoints: 100,
			Status:    models.ExamStatusScheduled,
		},
		AcademicYear:      "2025/2026",
		RegistrationStart: regStart,
		RegistrationEnd:   regEnd,
	}
}

func newRegistrationFixture(regStart, regEnd time.Time) (*RegistrationService, *mockRegistrationRepo, *mockExamCatalog) {
	repo := &mockRegistrationRepo{subjectOf: map[string]string{"exam1": "sub1"}}
	exams := &mockExamCatalog{exams: map[string]*models.ExamDetail{
		"exam1": openExam("exam1", "sub1", regStart, regEnd),
	}}
	courses := &mockCourseEligibility{active: map[string]bool{"stu1|sub1|2025/2026": true}}
	svc := NewRegistrationService(repo, exams, courses, nil, validator.New(), zap.NewNop())
	return svc, repo, exams
}

func TestRegisterCreatesFirstAttempt(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 23, 59, 59, 0, time.UTC)
	svc, repo, _ := newRegistrationFixture(regStart, regEnd)

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	registration, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, now)
	require.NoError(t, err)
	assert.Equal(t, 1, registration.Attempt)
	assert.Equal(t, now, registration.RegisteredAt)
	assert.Len(t, repo.registrations, 1)
}

func TestRegisterAttemptNumbering(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	svc, repo, _ := newRegistrationFixture(regStart, regEnd)

	// A prior attempt for the same subject in an earlier period.
	repo.subjectOf["exam0"] = "sub1"
	repo.registrations = map[string]*models.ExamRegistration{
		"stu1|exam0": {StudentID: "stu1", ExamID: "exam0", Attempt: 1},
	}

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	registration, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, now)
	require.NoError(t, err)
	assert.Equal(t, 2, registration.Attempt)
}

func TestRegisterWindowBoundaries(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	// Both boundaries are inclusive.
	for _, now := range []time.Time{regStart, regEnd} {
		svc, _, _ := newRegistrationFixture(regStart, regEnd)
		_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, now)
		require.NoError(t, err, "now=%v", now)
	}

	for _, now := range []time.Time{regStart.Add(-time.Second), regEnd.Add(time.Second)} {
		svc, _, _ := newRegistrationFixture(regStart, regEnd)
		_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, now)
		assert.ErrorIs(t, err, appErrors.ErrRegistrationClosed, "now=%v", now)
	}
}

func TestRegisterExamNotScheduled(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	svc, _, exams := newRegistrationFixture(regStart, regEnd)
	exams.exams["exam1"].Status = models.ExamStatusCancelled

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, regStart)
	assert.ErrorIs(t, err, appErrors.ErrRegistrationClosed)
}

func TestRegisterNotEnrolled(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	svc, _, _ := newRegistrationFixture(regStart, regEnd)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu2", ExamID: "exam1"}, regStart)
	assert.ErrorIs(t, err, appErrors.ErrNotEnrolled)
}

func TestRegisterDuplicate(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	svc, _, _ := newRegistrationFixture(regStart, regEnd)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, now)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "exam1"}, now)
	assert.ErrorIs(t, err, appErrors.ErrAlreadyRegistered)
}

func TestRegisterUnknownExam(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	svc, _, _ := newRegistrationFixture(regStart, regEnd)

	_, err := svc.Register(context.Background(), RegisterRequest{StudentID: "stu1", ExamID: "nope"}, regStart)
	assert.ErrorIs(t, err, appErrors.ErrUnknownExam)
}

func TestListAvailableFilters(t *testing.T) {
	regStart := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	regEnd := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	repo := &mockRegistrationRepo{
		subjectOf: map[string]string{"exam1": "sub1", "exam2": "sub2", "exam3": "sub3"},
		registrations: map[string]*models.ExamRegistration{
			"stu1|exam2": {StudentID: "stu1", ExamID: "exam2", Attempt: 1},
		},
	}
	exams := &mockExamCatalog{exams: map[string]*models.ExamDetail{
		"exam1": openExam("exam1", "sub1", regStart, regEnd),
		"exam2": openExam("exam2", "sub2", regStart, regEnd),
		"exam3": openExam("exam3", "sub3", regStart, regEnd),
	}}
	// Enrolled for sub1 and sub2, but exam2 is already taken; sub3 is not enrolled.
	courses := &mockCourseEligibility{active: map[string]bool{
		"stu1|sub1|2025/2026": true,
		"stu1|sub2|2025/2026": true,
	}}
	svc := NewRegistrationService(repo, exams, courses, nil, validator.New(), zap.NewNop())

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	available, err := svc.ListAvailable(context.Background(), "stu1", now)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "exam1", available[0].ID)
}
