package models

import "time"

// EnrollmentStatus represents the lifecycle of a program enrollment.
type EnrollmentStatus string

// Possible program enrollment statuses. GRADUATED and WITHDRAWN are terminal.
const (
	EnrollmentStatusActive    EnrollmentStatus = "ACTIVE"
	EnrollmentStatusInactive  EnrollmentStatus = "INACTIVE"
	EnrollmentStatusGraduated EnrollmentStatus = "GRADUATED"
	EnrollmentStatusWithdrawn EnrollmentStatus = "WITHDRAWN"
)

var enrollmentTransitions = map[EnrollmentStatus][]EnrollmentStatus{
	EnrollmentStatusActive:   {EnrollmentStatusInactive, EnrollmentStatusGraduated, EnrollmentStatusWithdrawn},
	EnrollmentStatusInactive: {EnrollmentStatusActive, EnrollmentStatusWithdrawn},
}

// CanTransitionTo reports whether moving to the target status is allowed.
// Terminal statuses admit no further transitions.
func (s EnrollmentStatus) CanTransitionTo(target EnrollmentStatus) bool {
	for _, allowed := range enrollmentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Valid reports whether the status is a known variant.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusActive, EnrollmentStatusInactive, EnrollmentStatusGraduated, EnrollmentStatusWithdrawn:
		return true
	}
	return false
}

// StudentEnrollment records a student's membership in a study program for an
// academic year. The (student, program, academic year) triple is unique and
// rows are never hard-deleted; terminal states mark the end of the record.
type StudentEnrollment struct {
	ID             string           `db:"id" json:"id"`
	StudentID      string           `db:"student_id" json:"student_id"`
	StudyProgramID string           `db:"study_program_id" json:"study_program_id"`
	AcademicYear   string           `db:"academic_year" json:"academic_year"`
	YearOfStudy    int              `db:"year_of_study" json:"year_of_study"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	EnrolledAt     time.Time        `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// StudentEnrollmentFilter provides filters for listing program enrollments.
type StudentEnrollmentFilter struct {
	StudentID      string
	StudyProgramID string
	AcademicYear   string
	Status         EnrollmentStatus
	Page           int
	PageSize       int
}
