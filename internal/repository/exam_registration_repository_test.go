package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/univ-is/academic-records-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestExamRegistrationRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRegistrationRepository(db)

	mock.ExpectExec("INSERT INTO exam_registrations").
		WithArgs(sqlmock.AnyArg(), "stu-1", "exam-1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	registration := &models.ExamRegistration{StudentID: "stu-1", ExamID: "exam-1", Attempt: 1}
	created, err := repo.Insert(context.Background(), registration)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, registration.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRegistrationRepositoryInsertConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRegistrationRepository(db)

	// ON CONFLICT DO NOTHING reports zero affected rows for the loser.
	mock.ExpectExec("INSERT INTO exam_registrations").
		WithArgs(sqlmock.AnyArg(), "stu-1", "exam-1", 1, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	created, err := repo.Insert(context.Background(), &models.ExamRegistration{StudentID: "stu-1", ExamID: "exam-1", Attempt: 1})
	require.NoError(t, err)
	require.False(t, created)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRegistrationRepositoryFindByStudentAndExam(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRegistrationRepository(db)

	registeredAt := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "exam_id", "attempt", "registered_at", "invalidated_at"}).
		AddRow("reg-1", "stu-1", "exam-1", 2, registeredAt, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, exam_id, attempt, registered_at, invalidated_at")).
		WithArgs("stu-1", "exam-1").
		WillReturnRows(rows)

	registration, err := repo.FindByStudentAndExam(context.Background(), "stu-1", "exam-1")
	require.NoError(t, err)
	require.Equal(t, 2, registration.Attempt)
	require.Nil(t, registration.InvalidatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRegistrationRepositoryCountBySubject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRegistrationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM exam_registrations er")).
		WithArgs("stu-1", "sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountBySubject(context.Background(), "stu-1", "sub-1")
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExamRegistrationRepositoryInvalidateByExam(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewExamRegistrationRepository(db)

	at := time.Date(2026, 1, 20, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE exam_registrations SET invalidated_at = $2 WHERE exam_id = $1 AND invalidated_at IS NULL")).
		WithArgs("exam-1", at).
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.InvalidateByExam(context.Background(), "exam-1", at)
	require.NoError(t, err)
	require.Equal(t, int64(3), affected)
	require.NoError(t, mock.ExpectationsWereMet())
}
