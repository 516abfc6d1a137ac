package services

import "errors"

var (
	// ErrPermissionDenied means the actor lacks edit/publish rights.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound covers both genuinely missing records and unauthorized
	// access to non-public drafts, so existence is never leaked.
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness violation the caller may retry.
	ErrConflict = errors.New("conflict")
)

// ValidationError is a user-facing rejection of malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func validationErr(msg string) error { return &ValidationError{Msg: msg} }

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
