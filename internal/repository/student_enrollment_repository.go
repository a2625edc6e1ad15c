package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univ-is/academic-records-api/internal/models"
)

// StudentEnrollmentRepository persists program enrollments.
type StudentEnrollmentRepository struct {
	db *sqlx.DB
}

// NewStudentEnrollmentRepository constructs the repository.
func NewStudentEnrollmentRepository(db *sqlx.DB) *StudentEnrollmentRepository {
	return &StudentEnrollmentRepository{db: db}
}

// List returns program enrollments filtered by the provided criteria.
func (r *StudentEnrollmentRepository) List(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollment, int, error) {
	base := "FROM student_enrollments se"
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("se.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.StudyProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("se.study_program_id = $%d", len(args)+1))
		args = append(args, filter.StudyProgramID)
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("se.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("se.status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT se.id, se.student_id, se.study_program_id, se.academic_year, se.year_of_study, se.status, se.enrolled_at, se.updated_at
        %s ORDER BY se.enrolled_at DESC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var enrollments []models.StudentEnrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list student enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count student enrollments: %w", err)
	}
	return enrollments, total, nil
}

// FindByID returns an enrollment by its ID.
func (r *StudentEnrollmentRepository) FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error) {
	const query = `SELECT id, student_id, study_program_id, academic_year, year_of_study, status, enrolled_at, updated_at
        FROM student_enrollments WHERE id = $1`
	var enrollment models.StudentEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindByTriple returns the enrollment for the unique (student, program, academic year) key.
func (r *StudentEnrollmentRepository) FindByTriple(ctx context.Context, studentID, programID, academicYear string) (*models.StudentEnrollment, error) {
	const query = `SELECT id, student_id, study_program_id, academic_year, year_of_study, status, enrolled_at, updated_at
        FROM student_enrollments WHERE student_id = $1 AND study_program_id = $2 AND academic_year = $3`
	var enrollment models.StudentEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, programID, academicYear); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Create persists a new program enrollment. The composite unique index on
// (student_id, study_program_id, academic_year) backs the uniqueness invariant.
func (r *StudentEnrollmentRepository) Create(ctx context.Context, enrollment *models.StudentEnrollment) (bool, error) {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.UpdatedAt = now
	if enrollment.Status == "" {
		enrollment.Status = models.EnrollmentStatusActive
	}
	const query = `INSERT INTO student_enrollments (id, student_id, study_program_id, academic_year, year_of_study, status, enrolled_at, updated_at)
        VALUES (:id, :student_id, :study_program_id, :academic_year, :year_of_study, :status, :enrolled_at, :updated_at)
        ON CONFLICT (student_id, study_program_id, academic_year) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, enrollment)
	if err != nil {
		return false, fmt.Errorf("create student enrollment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created enrollment rows: %w", err)
	}
	return affected > 0, nil
}

// UpdateStatus updates the lifecycle status for an enrollment.
func (r *StudentEnrollmentRepository) UpdateStatus(ctx context.Context, id string, status models.EnrollmentStatus) error {
	const query = `UPDATE student_enrollments SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update enrollment status: %w", err)
	}
	return nil
}

// UpdateYearOfStudy advances the year of study for an enrollment.
func (r *StudentEnrollmentRepository) UpdateYearOfStudy(ctx context.Context, id string, year int) error {
	const query = `UPDATE student_enrollments SET year_of_study = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, year, time.Now().UTC()); err != nil {
		return fmt.Errorf("update year of study: %w", err)
	}
	return nil
}
