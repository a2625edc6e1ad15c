package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testPeriod() ExamPeriod {
	return ExamPeriod{
		StartDate:         time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		EndDate:           time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		RegistrationStart: time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		RegistrationEnd:   time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestExamPeriodContains(t *testing.T) {
	p := testPeriod()

	assert.True(t, p.Contains(p.StartDate))
	assert.True(t, p.Contains(p.EndDate))
	assert.True(t, p.Contains(p.StartDate.AddDate(0, 0, 10)))
	assert.False(t, p.Contains(p.StartDate.Add(-time.Second)))
	assert.False(t, p.Contains(p.EndDate.Add(time.Second)))
}

func TestExamPeriodRegistrationOpen(t *testing.T) {
	p := testPeriod()

	assert.True(t, p.RegistrationOpen(p.RegistrationStart))
	assert.True(t, p.RegistrationOpen(p.RegistrationEnd))
	assert.False(t, p.RegistrationOpen(p.RegistrationStart.Add(-time.Second)))
	assert.False(t, p.RegistrationOpen(p.RegistrationEnd.Add(time.Second)))
}

func TestExamPeriodWindowConsistent(t *testing.T) {
	p := testPeriod()
	assert.True(t, p.WindowConsistent())

	inverted := testPeriod()
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	assert.False(t, inverted.WindowConsistent())

	invertedReg := testPeriod()
	invertedReg.RegistrationStart, invertedReg.RegistrationEnd = invertedReg.RegistrationEnd, invertedReg.RegistrationStart
	assert.False(t, invertedReg.WindowConsistent())

	lateClose := testPeriod()
	lateClose.RegistrationEnd = lateClose.EndDate.AddDate(0, 0, 1)
	assert.False(t, lateClose.WindowConsistent())

	// Registration may close exactly when the period ends.
	edge := testPeriod()
	edge.RegistrationEnd = edge.EndDate
	assert.True(t, edge.WindowConsistent())
}

func TestExamStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ExamStatus
		allowed  bool
	}{
		{ExamStatusScheduled, ExamStatusActive, true},
		{ExamStatusScheduled, ExamStatusCancelled, true},
		{ExamStatusScheduled, ExamStatusCompleted, false},
		{ExamStatusActive, ExamStatusCompleted, true},
		{ExamStatusActive, ExamStatusCancelled, true},
		{ExamStatusActive, ExamStatusScheduled, false},
		{ExamStatusCompleted, ExamStatusCancelled, false},
		{ExamStatusCancelled, ExamStatusScheduled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestEnrollmentStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to EnrollmentStatus
		allowed  bool
	}{
		{EnrollmentStatusActive, EnrollmentStatusInactive, true},
		{EnrollmentStatusActive, EnrollmentStatusGraduated, true},
		{EnrollmentStatusActive, EnrollmentStatusWithdrawn, true},
		{EnrollmentStatusInactive, EnrollmentStatusActive, true},
		{EnrollmentStatusInactive, EnrollmentStatusGraduated, false},
		{EnrollmentStatusGraduated, EnrollmentStatusActive, false},
		{EnrollmentStatusWithdrawn, EnrollmentStatusActive, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
