package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univ-is/academic-records-api/internal/models"
)

// ExamRegistrationRepository persists exam registrations.
type ExamRegistrationRepository struct {
	db *sqlx.DB
}

// NewExamRegistrationRepository constructs the repository.
func NewExamRegistrationRepository(db *sqlx.DB) *ExamRegistrationRepository {
	return &ExamRegistrationRepository{db: db}
}

// Insert creates a registration. The unique index on (student_id, exam_id) is
// the final arbiter under concurrent attempts; false means another request
// already holds the pair.
func (r *ExamRegistrationRepository) Insert(ctx context.Context, registration *models.ExamRegistration) (bool, error) {
	if registration.ID == "" {
		registration.ID = uuid.NewString()
	}
	if registration.RegisteredAt.IsZero() {
		registration.RegisteredAt = time.Now().UTC()
	}
	if registration.Attempt < 1 {
		registration.Attempt = 1
	}
	const query = `INSERT INTO exam_registrations (id, student_id, exam_id, attempt, registered_at)
        VALUES (:id, :student_id, :exam_id, :attempt, :registered_at)
        ON CONFLICT (student_id, exam_id) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, registration)
	if err != nil {
		return false, fmt.Errorf("create exam registration: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created registration rows: %w", err)
	}
	return affected > 0, nil
}

// FindByStudentAndExam returns the registration for the unique pair.
func (r *ExamRegistrationRepository) FindByStudentAndExam(ctx context.Context, studentID, examID string) (*models.ExamRegistration, error) {
	const query = `SELECT id, student_id, exam_id, attempt, registered_at, invalidated_at
        FROM exam_registrations WHERE student_id = $1 AND exam_id = $2`
	var registration models.ExamRegistration
	if err := r.db.GetContext(ctx, &registration, query, studentID, examID); err != nil {
		return nil, err
	}
	return &registration, nil
}

// Exists reports whether a registration exists for the pair.
func (r *ExamRegistrationRepository) Exists(ctx context.Context, studentID, examID string) (bool, error) {
	const query = `SELECT 1 FROM exam_registrations WHERE student_id = $1 AND exam_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, examID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check exam registration: %w", err)
	}
	return true, nil
}

// CountBySubject counts the student's prior registrations for exams of the
// subject, used to derive the attempt number for re-takes.
func (r *ExamRegistrationRepository) CountBySubject(ctx context.Context, studentID, subjectID string) (int, error) {
	const query = `SELECT COUNT(*) FROM exam_registrations er
        JOIN exams e ON e.id = er.exam_id
        WHERE er.student_id = $1 AND e.subject_id = $2 AND er.invalidated_at IS NULL`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID, subjectID); err != nil {
		return 0, fmt.Errorf("count subject registrations: %w", err)
	}
	return count, nil
}

// ListByStudent returns the student's registrations with exam context,
// excluding invalidated rows.
func (r *ExamRegistrationRepository) ListByStudent(ctx context.Context, studentID string) ([]models.ExamRegistrationDetail, error) {
	const query = `
SELECT er.id, er.student_id, er.exam_id, er.attempt, er.registered_at, er.invalidated_at,
       s.code AS subject_code, s.name AS subject_name, e.exam_date, p.name AS period_name
FROM exam_registrations er
JOIN exams e ON e.id = er.exam_id
JOIN subjects s ON s.id = e.subject_id
JOIN exam_periods p ON p.id = e.exam_period_id
WHERE er.student_id = $1 AND er.invalidated_at IS NULL
ORDER BY e.exam_date ASC`
	var registrations []models.ExamRegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, studentID); err != nil {
		return nil, fmt.Errorf("list student registrations: %w", err)
	}
	return registrations, nil
}

// InvalidateByExam stamps all registrations of an exam as invalidated,
// used when the exam is cancelled.
func (r *ExamRegistrationRepository) InvalidateByExam(ctx context.Context, examID string, at time.Time) (int64, error) {
	const query = `UPDATE exam_registrations SET invalidated_at = $2 WHERE exam_id = $1 AND invalidated_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, examID, at)
	if err != nil {
		return 0, fmt.Errorf("invalidate exam registrations: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check invalidated registration rows: %w", err)
	}
	return affected, nil
}
