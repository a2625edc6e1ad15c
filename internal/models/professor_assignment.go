package models

import "time"

// ProfessorAssignment links a professor to a subject for an academic year.
// The (professor, subject, academic year) triple is unique.
type ProfessorAssignment struct {
	ID           string    `db:"id" json:"id"`
	ProfessorID  string    `db:"professor_id" json:"professor_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ProfessorAssignmentDetail enriches assignments with subject info.
type ProfessorAssignmentDetail struct {
	ProfessorAssignment
	SubjectCode string `db:"subject_code" json:"subject_code"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}
