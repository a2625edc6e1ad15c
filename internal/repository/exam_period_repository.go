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

// ExamPeriodRepository persists exam periods.
type ExamPeriodRepository struct {
	db *sqlx.DB
}

// NewExamPeriodRepository constructs the repository.
func NewExamPeriodRepository(db *sqlx.DB) *ExamPeriodRepository {
	return &ExamPeriodRepository{db: db}
}

const examPeriodColumns = `id, name, semester, academic_year, start_date, end_date, registration_start, registration_end, created_at`

// List returns periods optionally scoped to an academic year and semester.
func (r *ExamPeriodRepository) List(ctx context.Context, academicYear string, semester models.SemesterType) ([]models.ExamPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_periods", examPeriodColumns)
	var conditions []string
	var args []interface{}
	if academicYear != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year = $%d", len(args)+1))
		args = append(args, academicYear)
	}
	if semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, semester)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_date DESC"

	var periods []models.ExamPeriod
	if err := r.db.SelectContext(ctx, &periods, query, args...); err != nil {
		return nil, fmt.Errorf("list exam periods: %w", err)
	}
	return periods, nil
}

// FindByID returns a period by its ID.
func (r *ExamPeriodRepository) FindByID(ctx context.Context, id string) (*models.ExamPeriod, error) {
	query := fmt.Sprintf("SELECT %s FROM exam_periods WHERE id = $1", examPeriodColumns)
	var period models.ExamPeriod
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// ListActive returns periods whose outer window contains now, boundaries inclusive.
func (r *ExamPeriodRepository) ListActive(ctx context.Context, now time.Time) ([]models.ExamPeriod, error) {
	query := fmt.Sprintf(`SELECT %s FROM exam_periods WHERE start_date <= $1 AND end_date >= $1 ORDER BY start_date ASC`, examPeriodColumns)
	var periods []models.ExamPeriod
	if err := r.db.SelectContext(ctx, &periods, query, now); err != nil {
		return nil, fmt.Errorf("list active exam periods: %w", err)
	}
	return periods, nil
}

// Create persists a new exam period.
func (r *ExamPeriodRepository) Create(ctx context.Context, period *models.ExamPeriod) error {
	if period.ID == "" {
		period.ID = uuid.NewString()
	}
	if period.CreatedAt.IsZero() {
		period.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO exam_periods (id, name, semester, academic_year, start_date, end_date, registration_start, registration_end, created_at)
        VALUES (:id, :name, :semester, :academic_year, :start_date, :end_date, :registration_start, :registration_end, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("create exam period: %w", err)
	}
	return nil
}
