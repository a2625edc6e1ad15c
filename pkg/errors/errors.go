package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors by code so Clone'd instances still compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Scheduling and reference errors.
var (
	ErrInvalidWindow  = New("INVALID_WINDOW", http.StatusBadRequest, "inconsistent period window")
	ErrOutOfPeriod    = New("OUT_OF_PERIOD", http.StatusBadRequest, "exam date outside period window")
	ErrUnknownSubject = New("UNKNOWN_SUBJECT", http.StatusNotFound, "subject not found")
	ErrUnknownPeriod  = New("UNKNOWN_PERIOD", http.StatusNotFound, "exam period not found")
	ErrUnknownExam    = New("UNKNOWN_EXAM", http.StatusNotFound, "exam not found")
)

// Time-window eligibility errors. Terminal for the call: the deadline does not move.
var (
	ErrRegistrationClosed = New("REGISTRATION_CLOSED", http.StatusUnprocessableEntity, "registration window is closed")
	ErrWindowExpired      = New("WINDOW_EXPIRED", http.StatusUnprocessableEntity, "grading window has expired")
)

// Missing-prerequisite errors: the caller must first establish the relationship.
var (
	ErrNotEnrolled    = New("NOT_ENROLLED", http.StatusPreconditionFailed, "student not enrolled in subject")
	ErrNotAssigned    = New("NOT_ASSIGNED", http.StatusPreconditionFailed, "professor not assigned to subject")
	ErrNotRegistered  = New("NOT_REGISTERED", http.StatusPreconditionFailed, "student not registered for exam")
	ErrInvalidStatus  = New("INVALID_STATUS", http.StatusPreconditionFailed, "invalid status transition")
)

// Uniqueness violations, backed by composite unique constraints.
var (
	ErrAlreadyRegistered   = New("ALREADY_REGISTERED", http.StatusConflict, "student already registered for exam")
	ErrAlreadyEnrolled     = New("ALREADY_ENROLLED", http.StatusConflict, "student already enrolled in course")
	ErrAlreadyGraded       = New("ALREADY_GRADED", http.StatusConflict, "grade already recorded for attempt")
	ErrDuplicateEnrollment = New("DUPLICATE_ENROLLMENT", http.StatusConflict, "conflicting program enrollment exists")
	ErrDuplicateAssignment = New("DUPLICATE_ASSIGNMENT", http.StatusConflict, "professor already assigned")
)

// Common infrastructure and auth errors.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrInactiveAccount    = New("ACCOUNT_INACTIVE", http.StatusForbidden, "account is inactive")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
