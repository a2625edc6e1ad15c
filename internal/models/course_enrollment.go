package models

import "time"

// CourseEnrollment marks a student as taking a subject in an academic year.
// The (student, subject, academic year) triple is unique among active rows;
// dropping a course deactivates the row instead of deleting it.
type CourseEnrollment struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectID    string    `db:"subject_id" json:"subject_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	EnrolledAt   time.Time `db:"enrolled_at" json:"enrolled_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseEnrollmentDetail enriches CourseEnrollment with subject info.
type CourseEnrollmentDetail struct {
	CourseEnrollment
	SubjectCode string `db:"subject_code" json:"subject_code"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	ECTS        int    `db:"ects" json:"ects"`
}
