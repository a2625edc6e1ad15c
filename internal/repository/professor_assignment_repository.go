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

// ProfessorAssignmentRepository persists professor-subject assignments.
type ProfessorAssignmentRepository struct {
	db *sqlx.DB
}

// NewProfessorAssignmentRepository constructs the repository.
func NewProfessorAssignmentRepository(db *sqlx.DB) *ProfessorAssignmentRepository {
	return &ProfessorAssignmentRepository{db: db}
}

// ListByProfessor returns assignments owned by a professor.
func (r *ProfessorAssignmentRepository) ListByProfessor(ctx context.Context, professorID string) ([]models.ProfessorAssignmentDetail, error) {
	const query = `
SELECT pa.id, pa.professor_id, pa.subject_id, pa.academic_year, pa.is_active, pa.created_at,
       s.code AS subject_code, s.name AS subject_name
FROM professor_assignments pa
JOIN subjects s ON s.id = pa.subject_id
WHERE pa.professor_id = $1
ORDER BY pa.academic_year DESC, s.code ASC`
	var assignments []models.ProfessorAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, professorID); err != nil {
		return nil, fmt.Errorf("list professor assignments: %w", err)
	}
	return assignments, nil
}

// ExistsActive checks if the professor-subject-year tuple is actively assigned.
func (r *ProfessorAssignmentRepository) ExistsActive(ctx context.Context, professorID, subjectID, academicYear string) (bool, error) {
	const query = `SELECT 1 FROM professor_assignments WHERE professor_id = $1 AND subject_id = $2 AND academic_year = $3 AND is_active LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, professorID, subjectID, academicYear); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check professor assignment: %w", err)
	}
	return true, nil
}

// Insert creates a new assignment. The unique index on
// (professor_id, subject_id, academic_year) backs the triple invariant.
func (r *ProfessorAssignmentRepository) Insert(ctx context.Context, assignment *models.ProfessorAssignment) (bool, error) {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}
	assignment.IsActive = true
	const query = `INSERT INTO professor_assignments (id, professor_id, subject_id, academic_year, is_active, created_at)
        VALUES (:id, :professor_id, :subject_id, :academic_year, :is_active, :created_at)
        ON CONFLICT (professor_id, subject_id, academic_year) DO NOTHING`
	result, err := r.db.NamedExecContext(ctx, query, assignment)
	if err != nil {
		return false, fmt.Errorf("create professor assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created assignment rows: %w", err)
	}
	return affected > 0, nil
}

// Deactivate retires an assignment keeping the row for history.
func (r *ProfessorAssignmentRepository) Deactivate(ctx context.Context, professorID, assignmentID string) error {
	const query = `UPDATE professor_assignments SET is_active = FALSE WHERE id = $1 AND professor_id = $2 AND is_active`
	result, err := r.db.ExecContext(ctx, query, assignmentID, professorID)
	if err != nil {
		return fmt.Errorf("deactivate professor assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deactivated assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
