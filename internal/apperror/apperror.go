package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrDownstream = errors.New("downstream service error")
)

// AppError carries an error kind plus the message that is safe to show to
// API clients. Err is one of the sentinel kinds above; Cause is the
// underlying failure, if any.
type AppError struct {
	Err     error
	Message string
	Field   string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func Validation(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func NotFound(message string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: message,
	}
}

// Downstream wraps a failure of the data store, object storage or one of the
// AI APIs. The message is passed through to the client.
func Downstream(message string, cause error) *AppError {
	return &AppError{
		Err:     ErrDownstream,
		Message: message,
		Cause:   cause,
	}
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsDownstream(err error) bool { return errors.Is(err, ErrDownstream) }
