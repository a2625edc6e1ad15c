package models

import "time"

// ExamRegistration records a student's intent to sit an exam. The
// (student, exam) pair is unique; the database constraint is the final
// arbiter under concurrent registration attempts. Attempt counts re-takes of
// the same subject across exams.
type ExamRegistration struct {
	ID            string     `db:"id" json:"id"`
	StudentID     string     `db:"student_id" json:"student_id"`
	ExamID        string     `db:"exam_id" json:"exam_id"`
	Attempt       int        `db:"attempt" json:"attempt"`
	RegisteredAt  time.Time  `db:"registered_at" json:"registered_at"`
	InvalidatedAt *time.Time `db:"invalidated_at" json:"invalidated_at,omitempty"`
}

// ExamRegistrationDetail enriches a registration with exam and subject info.
type ExamRegistrationDetail struct {
	ExamRegistration
	SubjectCode string    `db:"subject_code" json:"subject_code"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	ExamDate    time.Time `db:"exam_date" json:"exam_date"`
	PeriodName  string    `db:"period_name" json:"period_name"`
}
