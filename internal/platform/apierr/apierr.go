package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes surfaced to API clients in the error envelope.
const (
	CodeValidation        = "validation_failed"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeUnsupportedFormat = "unsupported_format"
	CodeStorageIO         = "storage_io"
	CodeInternal          = "internal"
	CodeUnauthorized      = "unauthorized"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

func NotFound(err error) *Error {
	return New(http.StatusNotFound, CodeNotFound, err)
}

// From unwraps err to an *Error, or reports a 500 internal error when none is found.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	return New(http.StatusInternalServerError, CodeInternal, err)
}
