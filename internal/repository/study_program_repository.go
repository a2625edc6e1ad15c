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

// StudyProgramRepository handles persistence of study programs.
type StudyProgramRepository struct {
	db *sqlx.DB
}

// NewStudyProgramRepository constructs the repository.
func NewStudyProgramRepository(db *sqlx.DB) *StudyProgramRepository {
	return &StudyProgramRepository{db: db}
}

// List returns programs filtered by the provided criteria.
func (r *StudyProgramRepository) List(ctx context.Context, filter models.StudyProgramFilter) ([]models.StudyProgram, int, error) {
	base := "FROM study_programs p"
	var conditions []string
	var args []interface{}

	if filter.FacultyID != "" {
		conditions = append(conditions, fmt.Sprintf("p.faculty_id = $%d", len(args)+1))
		args = append(args, filter.FacultyID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.code ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
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

	query := fmt.Sprintf(`SELECT p.id, p.code, p.name, p.faculty_id, p.duration_years, p.created_at, p.updated_at
        %s ORDER BY p.code ASC LIMIT %d OFFSET %d`, base+clause, size, offset)

	var programs []models.StudyProgram
	if err := r.db.SelectContext(ctx, &programs, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list study programs: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count study programs: %w", err)
	}
	return programs, total, nil
}

// FindByID returns a program by its ID.
func (r *StudyProgramRepository) FindByID(ctx context.Context, id string) (*models.StudyProgram, error) {
	const query = `SELECT id, code, name, faculty_id, duration_years, created_at, updated_at FROM study_programs WHERE id = $1`
	var program models.StudyProgram
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// ExistsByCodeOrName checks the institution-wide uniqueness of code and name.
func (r *StudyProgramRepository) ExistsByCodeOrName(ctx context.Context, code, name string) (bool, error) {
	const query = `SELECT COUNT(*) FROM study_programs WHERE code = $1 OR name = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, code, name); err != nil {
		return false, fmt.Errorf("check study program uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create persists a new study program.
func (r *StudyProgramRepository) Create(ctx context.Context, program *models.StudyProgram) error {
	if program.ID == "" {
		program.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if program.CreatedAt.IsZero() {
		program.CreatedAt = now
	}
	program.UpdatedAt = now
	const query = `INSERT INTO study_programs (id, code, name, faculty_id, duration_years, created_at, updated_at)
        VALUES (:id, :code, :name, :faculty_id, :duration_years, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, program); err != nil {
		return fmt.Errorf("create study program: %w", err)
	}
	return nil
}
