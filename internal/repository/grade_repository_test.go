package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/univ-is/academic-records-api/internal/models"
)

func TestGradeRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	gradedAt := time.Date(2026, 2, 5, 14, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO grades").
		WithArgs(sqlmock.AnyArg(), "stu-1", "exam-1", "prof-1", 1, 72.0, 8, true, gradedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	grade := &models.Grade{
		StudentID: "stu-1", ExamID: "exam-1", ProfessorID: "prof-1",
		Attempt: 1, Points: 72, GradeValue: 8, Passed: true, GradedAt: gradedAt,
	}
	created, err := repo.Insert(context.Background(), grade)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, grade.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryInsertConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectExec("INSERT INTO grades").
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.Insert(context.Background(), &models.Grade{
		StudentID: "stu-1", ExamID: "exam-1", ProfessorID: "prof-1", Attempt: 1,
	})
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryExistsForAttempt(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grades")).
		WithArgs("stu-1", "exam-1", 1).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsForAttempt(context.Background(), "stu-1", "exam-1", 1)
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM grades")).
		WithArgs("stu-1", "exam-1", 2).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.ExistsForAttempt(context.Background(), "stu-1", "exam-1", 2)
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeRepositoryListTranscript(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	gradedAt := time.Date(2026, 2, 5, 14, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"subject_code", "subject_name", "ects", "academic_year", "attempt", "points", "grade_value", "passed", "graded_at"}).
		AddRow("CS101", "Algorithms", 6, "2025/2026", 1, 72.0, 8, true, gradedAt).
		AddRow("CS102", "Data Structures", 6, "2025/2026", 2, 45.0, 5, false, gradedAt)
	mock.ExpectQuery("SELECT s.code AS subject_code").
		WithArgs("stu-1").
		WillReturnRows(rows)

	transcript, err := repo.ListTranscript(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	require.Equal(t, "CS101", transcript[0].SubjectCode)
	require.False(t, transcript[1].Passed)
	require.NoError(t, mock.ExpectationsWereMet())
}
