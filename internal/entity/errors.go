package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Session errors
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionCompleted   = errors.New("session is already completed")
	ErrSessionNotComplete = errors.New("session is not completed yet")
	ErrNoPendingQuestion  = errors.New("no question is pending")
	ErrSkipNotAllowed     = errors.New("question can be skipped only after max retries")
	ErrIllegalTransition  = errors.New("illegal conversation transition")
	ErrInvalidQuestions   = errors.New("invalid question bank")

	// Gateway errors
	ErrGatewayTimeout  = errors.New("assistant run timed out")
	ErrGatewayFailure  = errors.New("assistant run failed")
	ErrMalformedOutput = errors.New("malformed assistant output")
	ErrRunNotCompleted = errors.New("assistant run is not completed yet")
	ErrRunNotFound     = errors.New("assistant run not found")

	// Validation errors
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// GatewayError describes a run that reached a terminal non-success status.
type GatewayError struct {
	Status  RunStatus
	Code    string
	Message string
}

func (e *GatewayError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: run %s", ErrGatewayFailure, e.Status)
	}
	return fmt.Sprintf("%s: run %s: %s (%s)", ErrGatewayFailure, e.Status, e.Message, e.Code)
}

func (e *GatewayError) Unwrap() error {
	return ErrGatewayFailure
}

// MalformedOutputError keeps the raw payload that could not be decoded.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("%s: %v", ErrMalformedOutput, e.Err)
}

func (e *MalformedOutputError) Unwrap() []error {
	return []error{ErrMalformedOutput, e.Err}
}
