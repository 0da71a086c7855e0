package rag

import (
	"errors"
	"fmt"
)

// Validation failures. These are rejected before any downstream call.
var (
	ErrEmptyQuery      = errors.New("query must not be empty")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyInput      = errors.New("embedding input must not be empty")
	ErrInputTooLong    = errors.New("embedding input exceeds maximum length")
)

// IsValidationError reports whether err should surface as a 400-equivalent.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrEmptyQuery) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrEmptyInput) ||
		errors.Is(err, ErrInputTooLong)
}

// UpstreamError marks a failure of an external dependency (embedding or
// synthesis backend) after retries were exhausted.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
