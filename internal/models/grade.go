package models

import "time"

// AttemptState describes where a (student, exam) attempt sits in the grading
// lifecycle. REGISTERED moves to GRADABLE once the exam date passes, then to
// GRADED on grade entry or EXPIRED when the grading window closes ungraded.
type AttemptState string

const (
	AttemptStateRegistered AttemptState = "REGISTERED"
	AttemptStateGradable   AttemptState = "GRADABLE"
	AttemptStateGraded     AttemptState = "GRADED"
	AttemptStateExpired    AttemptState = "EXPIRED"
)

// Grade is the authoritative record of one graded exam attempt. The
// (student, exam, attempt) triple is unique; re-grading requires an explicit
// new attempt, never a silent overwrite.
type Grade struct {
	ID          string    `db:"id" json:"id"`
	StudentID   string    `db:"student_id" json:"student_id"`
	ExamID      string    `db:"exam_id" json:"exam_id"`
	ProfessorID string    `db:"professor_id" json:"professor_id"`
	Attempt     int       `db:"attempt" json:"attempt"`
	Points      float64   `db:"points" json:"points"`
	GradeValue  int       `db:"grade_value" json:"grade_value"`
	Passed      bool      `db:"passed" json:"passed"`
	GradedAt    time.Time `db:"graded_at" json:"graded_at"`
}

// TranscriptRow is a read projection of a graded attempt for transcripts.
type TranscriptRow struct {
	SubjectCode  string    `db:"subject_code" json:"subject_code"`
	SubjectName  string    `db:"subject_name" json:"subject_name"`
	ECTS         int       `db:"ects" json:"ects"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Attempt      int       `db:"attempt" json:"attempt"`
	Points       float64   `db:"points" json:"points"`
	GradeValue   int       `db:"grade_value" json:"grade_value"`
	Passed       bool      `db:"passed" json:"passed"`
	GradedAt     time.Time `db:"graded_at" json:"graded_at"`
}
