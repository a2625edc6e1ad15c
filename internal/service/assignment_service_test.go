package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univ-is/academic-records-api/internal/models"
	appErrors "github.com/univ-is/academic-records-api/pkg/errors"
)

type mockAssignmentRepo struct {
	active map[string]*models.ProfessorAssignment
}

func (m *mockAssignmentRepo) ListByProfessor(ctx context.Context, professorID string) ([]models.ProfessorAssignmentDetail, error) {
	out := make([]models.ProfessorAssignmentDetail, 0)
	for _, a := range m.active {
		if a.ProfessorID == professorID {
			out = append(out, models.ProfessorAssignmentDetail{ProfessorAssignment: *a})
		}
	}
	return out, nil
}

func (m *mockAssignmentRepo) ExistsActive(ctx context.Context, professorID, subjectID, academicYear string) (bool, error) {
	_, ok := m.active[professorID+"|"+subjectID+"|"+academicYear]
	return ok, nil
}

func (m *mockAssignmentRepo) Insert(ctx context.Context, assignment *models.ProfessorAssignment) (bool, error) {
	if m.active == nil {
		m.active = make(map[string]*models.ProfessorAssignment)
	}
	key := assignment.ProfessorID + "|" + assignment.SubjectID + "|" + assignment.AcademicYear
	if _, ok := m.active[key]; ok {
		return false, nil
	}
	assignment.ID = "asg1"
	m.active[key] = assignment
	return true, nil
}

func (m *mockAssignmentRepo) Deactivate(ctx context.Context, professorID, assignmentID string) error {
	for key, a := range m.active {
		if a.ProfessorID == professorID && a.ID == assignmentID {
			delete(m.active, key)
			return nil
		}
	}
	return sql.ErrNoRows
}

func newAssignmentFixture() (*AssignmentService, *mockAssignmentRepo) {
	repo := &mockAssignmentRepo{}
	subjects := &mockSubjectReader{subjects: map[string]*models.Subject{
		"sub1": {ID: "sub1", Code: "CS101", Name: "Algorithms"},
	}}
	svc := NewAssignmentService(repo, subjects, validator.New(), zap.NewNop())
	return svc, repo
}

func TestAssignProfessor(t *testing.T) {
	svc, repo := newAssignmentFixture()
	req := AssignProfessorRequest{ProfessorID: "prof1", SubjectID: "sub1", AcademicYear: "2025/2026"}

	assignment, err := svc.Assign(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, assignment.ID)
	assert.Len(t, repo.active, 1)

	_, err = svc.Assign(context.Background(), req)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateAssignment)
}

func TestAssignUnknownSubject(t *testing.T) {
	svc, _ := newAssignmentFixture()

	_, err := svc.Assign(context.Background(), AssignProfessorRequest{
		ProfessorID: "prof1", SubjectID: "nope", AcademicYear: "2025/2026",
	})
	assert.ErrorIs(t, err, appErrors.ErrUnknownSubject)
}

func TestUnassign(t *testing.T) {
	svc, _ := newAssignmentFixture()
	assignment, err := svc.Assign(context.Background(), AssignProfessorRequest{
		ProfessorID: "prof1", SubjectID: "sub1", AcademicYear: "2025/2026",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Unassign(context.Background(), "prof1", assignment.ID))

	err = svc.Unassign(context.Background(), "prof1", assignment.ID)
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	assigned, err := svc.IsAssigned(context.Background(), "prof1", "sub1", "2025/2026")
	require.NoError(t, err)
	assert.False(t, assigned)
}
