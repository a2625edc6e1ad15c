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

// GradeRepository persists authoritative grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Insert records a grade for one attempt. The unique index on
// (student_id, exam_id, attempt) is the final arbiter; false means the
// attempt is already graded. Grades are never overwritten here.
func (r *GradeRepository) Insert(ctx context.Context, grade *models.Grade) (bool, error) {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.GradedAt.IsZero() {
		grade.GradedAt = time.Now().UTC()
	}
	const query = `INSERT INTO grades (id, student_id, exam_id, professor_id, attempt, points, grade_value, passed, graded_at)
        VALUES (:id, :student_id, :exam_id, :professor_id, :attempt, :points, :grade_value, :passed, :graded_at)
        ON CONFLICT (student_id, exam_id, attempt) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return false, fmt.Errorf("create grade: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created grade rows: %w", err)
	}
	return affected > 0, nil
}

// FindByPairAndAttempt returns the grade for a (student, exam) pair at an attempt.
func (r *GradeRepository) FindByPairAndAttempt(ctx context.Context, studentID, examID string, attempt int) (*models.Grade, error) {
	const query = `SELECT id, student_id, exam_id, professor_id, attempt, points, grade_value, passed, graded_at
        FROM grades WHERE student_id = $1 AND exam_id = $2 AND attempt = $3`
	var grade models.Grade
	if err := r.db.GetContext(ctx, &grade, query, studentID, examID, attempt); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ExistsForAttempt reports whether the attempt already carries a grade.
func (r *GradeRepository) ExistsForAttempt(ctx context.Context, studentID, examID string, attempt int) (bool, error) {
	const query = `SELECT 1 FROM grades WHERE student_id = $1 AND exam_id = $2 AND attempt = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, examID, attempt); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check grade attempt: %w", err)
	}
	return true, nil
}

// ListTranscript returns the student's graded attempts with subject context,
// ordered for transcript rendering.
func (r *GradeRepository) ListTranscript(ctx context.Context, studentID string) ([]models.TranscriptRow, error) {
	const query = `
SELECT s.code AS subject_code, s.name AS subject_name, s.ects, p.academic_year,
       g.attempt, g.points, g.grade_value, g.passed, g.graded_at
FROM grades g
JOIN exams e ON e.id = g.exam_id
JOIN subjects s ON s.id = e.subject_id
JOIN exam_periods p ON p.id = e.exam_period_id
WHERE g.student_id = $1
ORDER BY g.graded_at ASC, s.code ASC`
	var rows []models.TranscriptRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list transcript rows: %w", err)
	}
	return rows, nil
}
