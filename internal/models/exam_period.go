package models

import "time"

// SemesterType represents the half of the academic year a period belongs to.
type SemesterType string

const (
	SemesterWinter SemesterType = "WINTER"
	SemesterSummer SemesterType = "SUMMER"
)

// Valid reports whether the semester type is a known variant.
func (s SemesterType) Valid() bool {
	return s == SemesterWinter || s == SemesterSummer
}

// ExamPeriod is a named window in which exams take place. Registration happens
// inside the inner [RegistrationStart, RegistrationEnd] window, which must
// close no later than the outer window ends.
type ExamPeriod struct {
	ID                string       `db:"id" json:"id"`
	Name              string       `db:"name" json:"name"`
	Semester          SemesterType `db:"semester" json:"semester"`
	AcademicYear      string       `db:"academic_year" json:"academic_year"`
	StartDate         time.Time    `db:"start_date" json:"start_date"`
	EndDate           time.Time    `db:"end_date" json:"end_date"`
	RegistrationStart time.Time    `db:"registration_start" json:"registration_start"`
	RegistrationEnd   time.Time    `db:"registration_end" json:"registration_end"`
	CreatedAt         time.Time    `db:"created_at" json:"created_at"`
}

// Contains reports whether t falls within the period window, boundaries inclusive.
func (p *ExamPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}

// RegistrationOpen reports whether t falls within the registration window,
// boundaries inclusive.
func (p *ExamPeriod) RegistrationOpen(t time.Time) bool {
	return !t.Before(p.RegistrationStart) && !t.After(p.RegistrationEnd)
}

// WindowConsistent verifies the ordering invariants between the outer and
// inner windows.
func (p *ExamPeriod) WindowConsistent() bool {
	if p.StartDate.After(p.EndDate) {
		return false
	}
	if p.RegistrationStart.After(p.RegistrationEnd) {
		return false
	}
	return !p.RegistrationEnd.After(p.EndDate)
}
