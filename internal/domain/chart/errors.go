package chart

import (
	"errors"
	"fmt"
)

var (
	// ErrNoChart is returned by repositories when no revision exists yet
	// for (patient, kind).
	ErrNoChart = errors.New("no chart saved")

	// ErrAppointmentNotFound rejects saves that reference an appointment
	// unknown to the clinic.
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// ValidationError rejects a save before anything is written.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// ParseError wraps a document that could not be decoded during finding
// extraction. It is never fatal to a save; charts are stored as given and
// extraction simply yields zero findings.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse chart document: %v", e.Err) }
func (e *ParseError) Unwrap() error { return e.Err }
