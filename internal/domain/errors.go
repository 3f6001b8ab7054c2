package domain

import (
	"errors"
	"fmt"
)

// ValidationError means a submission precondition failed locally; no
// network request was attempted.
type ValidationError struct {
	Requirement string // e.g. "paymentProof", "guestInfo:email"
	Msg         string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(requirement, msg string) *ValidationError {
	return &ValidationError{Requirement: requirement, Msg: msg}
}

// ConnectivityError means the request was sent but no response arrived
// (network failure or client-side timeout). Whether the server acted on
// the request is unknown.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: unable to reach the server: %v", e.Op, e.Err)
}
func (e *ConnectivityError) Unwrap() error { return e.Err }

// ServerError means a response arrived with a non-success status. Msg
// carries the server-provided message verbatim when one was present.
type ServerError struct {
	Status int
	Msg    string
}

func (e *ServerError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("server rejected the request (status %d)", e.Status)
}

// Submission in-flight guard.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
