// Package apperror defines the domain errors shared by the bot, the admin API
// and the storage layer.
//
// Callers match on the sentinel values with errors.Is and read the
// human-readable message from *AppError with errors.As:
//
//	var appErr *apperror.AppError
//	if errors.As(err, &appErr) && errors.Is(err, apperror.ErrDuplicateSubmission) {
//	    reply(appErr.Message)
//	}
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("Validation Error")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")

	// ErrInvalidLink is a validation error: the proof link is not from an accepted source.
	ErrInvalidLink = fmt.Errorf("invalid proof link: %w", ErrValidation)
	// ErrDuplicateSubmission is a conflict: the user already submitted on that day.
	ErrDuplicateSubmission = fmt.Errorf("duplicate submission: %w", ErrConflict)
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// InvalidLink rejects a submission whose proof link does not start with one
// of the accepted prefixes.
func InvalidLink(link string) *AppError {
	return &AppError{
		Err:     ErrInvalidLink,
		Message: fmt.Sprintf("%q is not an accepted proof link", link),
		Field:   "proof_link",
	}
}

// DuplicateSubmission rejects a second submission by the same user on the
// same calendar day (UTC). date is formatted as YYYY-MM-DD.
func DuplicateSubmission(userID int64, date string) *AppError {
	return &AppError{
		Err:     ErrDuplicateSubmission,
		Message: fmt.Sprintf("user %d already submitted on %s", userID, date),
	}
}
