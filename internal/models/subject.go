package models

import "time"

// Subject represents a course unit within a study program.
type Subject struct {
	ID             string    `db:"id" json:"id"`
	Code           string    `db:"code" json:"code"`
	Name           string    `db:"name" json:"name"`
	ECTS           int       `db:"ects" json:"ects"`
	Semester       int       `db:"semester" json:"semester"`
	StudyProgramID string    `db:"study_program_id" json:"study_program_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing subjects.
type SubjectFilter struct {
	StudyProgramID string
	Semester       int
	Search         string
	Page           int
	PageSize       int
}
