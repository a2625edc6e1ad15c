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

// CourseEnrollmentRepository persists per-subject course enrollments.
type CourseEnrollmentRepository struct {
	db *sqlx.DB
}

// NewCourseEnrollmentRepository constructs the repository.
func NewCourseEnrollmentRepository(db *sqlx.DB) *CourseEnrollmentRepository {
	return &CourseEnrollmentRepository{db: db}
}

// Insert creates a course enrollment. The partial unique index on active
// (student_id, subject_id, academic_year) rows is the final arbiter under
// concurrent attempts; false means a conflicting active row already existed.
func (r *CourseEnrollmentRepository) Insert(ctx context.Context, enrollment *models.CourseEnrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	enrollment.IsActive = true
	const query = `INSERT INTO course_enrollments (id, student_id, subject_id, academic_year, is_active, enrolled_at, updated_at)
        VALUES (:id, :student_id, :subject_id, :academic_year, :is_active, :enrolled_at, :updated_at)
        ON CONFLICT (student_id, subject_id, academic_year) WHERE is_active DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return false, fmt.Errorf("create course enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created course enrollment rows: %w", err)
	}
	return affected > 0, nil
}

// ExistsActive reports whether an active enrollment exists for the triple.
func (r *CourseEnrollmentRepository) ExistsActive(ctx context.Context, studentID, subjectID, academicYear string) (bool, error) {
	const query = `SELECT 1 FROM course_enrollments WHERE student_id = $1 AND subject_id = $2 AND academic_year = $3 AND is_active LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID, academicYear); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check active course enrollment: %w", err)
	}
	return true, nil
}

// Deactivate marks the active enrollment for the triple as dropped.
func (r *CourseEnrollmentRepository) Deactivate(ctx context.Context, studentID, subjectID, academicYear string) error {
	const query = `UPDATE course_enrollments SET is_active = FALSE, updated_at = $4
        WHERE student_id = $1 AND subject_id = $2 AND academic_year = $3 AND is_active`
	result, err := r.db.ExecContext(ctx, query, studentID, subjectID, academicYear, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate course enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated enrollment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListActiveByStudent returns the student's active course enrollments for a year.
func (r *CourseEnrollmentRepository) ListActiveByStudent(ctx context.Context, studentID, academicYear string) ([]models.CourseEnrollmentDetail, error) {
	const query = `SELECT ce.id, ce.student_id, ce.subject_id, ce.academic_year, ce.is_active, ce.enrolled_at, ce.updated_at,
        s.code AS subject_code, s.name AS subject_name, s.ects
        FROM course_enrollments ce
        JOIN subjects s ON s.id = ce.subject_id
        WHERE ce.student_id = $1 AND ce.academic_year = $2 AND ce.is_active
        ORDER BY s.semester ASC, s.code ASC`
	var enrollments []models.CourseEnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID, academicYear); err != nil {
		return nil, fmt.Errorf("list course enrollments: %w", err)
	}
	return enrollments, nil
}
