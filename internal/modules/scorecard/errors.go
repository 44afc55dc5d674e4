package scorecard

import (
	"fmt"
	"strings"
)

// ValidationError lists the input fields that failed validation. No storage
// writes happen when it is returned.
type ValidationError struct {
	Fields []string
	Reason string
}

func (e *ValidationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing required field"
	}
	if len(e.Fields) == 0 {
		return reason
	}
	return fmt.Sprintf("%s: %s", reason, strings.Join(e.Fields, ", "))
}

// NotFoundError reports a scorecard whose live metadata or data file is missing.
type NotFoundError struct {
	Filename string
	Err      error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("scorecard %q not found", e.Filename)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ConflictError reports that a generated filename is already taken.
type ConflictError struct {
	Filename string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scorecard %q already exists", e.Filename)
}
