package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline failure classes. Only ErrUnsupportedFormat and ErrNoChunks abort a
// whole file; everything else degrades to partial results in the report.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrRenderFailure     = errors.New("page render failed")
	ErrExtractionCall    = errors.New("extraction call failed")
	ErrMalformedResponse = errors.New("malformed extraction response")
	ErrNoChunks          = errors.New("no extractable chunks")
	ErrInvalidInput      = errors.New("invalid input")
	ErrDatabase          = errors.New("database error")
	ErrValidation        = errors.New("validation failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
