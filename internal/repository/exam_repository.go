package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univ-is/academic-records-api/internal/models"
)

// ExamRepository persists exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

const examDetailQuery = `
SELECT e.id, e.subject_id, e.exam_period_id, e.exam_date, e.start_time, e.duration_mins, e.max_points, e.status, e.created_at, e.updated_at,
       s.code AS subject_code, s.name AS subject_name,
       p.name AS period_name, p.semester, p.academic_year, p.registration_start, p.registration_end
FROM exams e
JOIN subjects s ON s.id = e.subject_id
JOIN exam_periods p ON p.id = e.exam_period_id`

// FindByID returns an exam by its ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, subject_id, exam_period_id, exam_date, start_time, duration_mins, max_points, status, created_at, updated_at
        FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// FindDetailByID returns an exam joined with its subject and period.
func (r *ExamRepository) FindDetailByID(ctx context.Context, id string) (*models.ExamDetail, error) {
	query := examDetailQuery + " WHERE e.id = $1"
	var detail models.ExamDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByPeriod returns exams within a period.
func (r *ExamRepository) ListByPeriod(ctx context.Context, periodID string) ([]models.ExamDetail, error) {
	query := examDetailQuery + " WHERE e.exam_period_id = $1 ORDER BY e.exam_date ASC, s.code ASC"
	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, periodID); err != nil {
		return nil, fmt.Errorf("list period exams: %w", err)
	}
	return exams, nil
}

// ListOpenForRegistration returns schedulable exams whose period registration
// window contains now, boundaries inclusive.
func (r *ExamRepository) ListOpenForRegistration(ctx context.Context, now time.Time) ([]models.ExamDetail, error) {
	query := examDetailQuery + `
WHERE e.status = $1 AND p.registration_start <= $2 AND p.registration_end >= $2
ORDER BY e.exam_date ASC, s.code ASC`
	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, models.ExamStatusScheduled, now); err != nil {
		return nil, fmt.Errorf("list open exams: %w", err)
	}
	return exams, nil
}

// Create persists a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	if exam.Status == "" {
		exam.Status = models.ExamStatusScheduled
	}
	const query = `INSERT INTO exams (id, subject_id, exam_period_id, exam_date, start_time, duration_mins, max_points, status, created_at, updated_at)
        VALUES (:id, :subject_id, :exam_period_id, :exam_date, :start_time, :duration_mins, :max_points, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// UpdateStatus moves the exam to a new lifecycle status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id string, status models.ExamStatus) error {
	const query = `UPDATE exams SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update exam status: %w", err)
	}
	return nil
}
