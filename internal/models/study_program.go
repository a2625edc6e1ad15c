package models

import "time"

// StudyProgram represents a degree program offered by a faculty.
// Name and code are unique within the institution.
type StudyProgram struct {
	ID            string    `db:"id" json:"id"`
	Code          string    `db:"code" json:"code"`
	Name          string    `db:"name" json:"name"`
	FacultyID     string    `db:"faculty_id" json:"faculty_id"`
	DurationYears int       `db:"duration_years" json:"duration_years"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudyProgramFilter captures supported filters for listing programs.
type StudyProgramFilter struct {
	FacultyID string
	Search    string
	Page      int
	PageSize  int
}
