package models

import "time"

// ExamStatus represents the lifecycle of a scheduled exam.
type ExamStatus string

// Exam statuses. COMPLETED and CANCELLED are terminal.
const (
	ExamStatusScheduled ExamStatus = "SCHEDULED"
	ExamStatusActive    ExamStatus = "ACTIVE"
	ExamStatusCompleted ExamStatus = "COMPLETED"
	ExamStatusCancelled ExamStatus = "CANCELLED"
)

var examTransitions = map[ExamStatus][]ExamStatus{
	ExamStatusScheduled: {ExamStatusActive, ExamStatusCancelled},
	ExamStatusActive:    {ExamStatusCompleted, ExamStatusCancelled},
}

// CanTransitionTo reports whether moving to the target status is allowed.
func (s ExamStatus) CanTransitionTo(target ExamStatus) bool {
	for _, allowed := range examTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Exam belongs to exactly one subject and one exam period. ExamDate must fall
// within the owning period's window.
type Exam struct {
	ID           string     `db:"id" json:"id"`
	SubjectID    string     `db:"subject_id" json:"subject_id"`
	ExamPeriodID string     `db:"exam_period_id" json:"exam_period_id"`
	ExamDate     time.Time  `db:"exam_date" json:"exam_date"`
	StartTime    string     `db:"start_time" json:"start_time"`
	DurationMins int        `db:"duration_mins" json:"duration_mins"`
	MaxPoints    float64    `db:"max_points" json:"max_points"`
	Status       ExamStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ExamDetail enriches Exam with subject and period info for projections.
type ExamDetail struct {
	Exam
	SubjectCode       string       `db:"subject_code" json:"subject_code"`
	SubjectName       string       `db:"subject_name" json:"subject_name"`
	PeriodName        string       `db:"period_name" json:"period_name"`
	Semester          SemesterType `db:"semester" json:"semester"`
	AcademicYear      string       `db:"academic_year" json:"academic_year"`
	RegistrationStart time.Time    `db:"registration_start" json:"registration_start"`
	RegistrationEnd   time.Time    `db:"registration_end" json:"registration_end"`
}
