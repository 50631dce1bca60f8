package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers any referenced title, review, comment, user,
	// category or genre that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied means the actor lacks the role or ownership
	// the operation requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDuplicateReview is the uniqueness violation for a second
	// review by the same author on the same title. Kept distinct from
	// plain validation so clients can branch on it.
	ErrDuplicateReview = errors.New("a review by this author already exists for the title")

	// ErrSlugTaken is the conflict for a duplicate category/genre slug.
	ErrSlugTaken = errors.New("slug already in use")

	ErrNameInUse    = errors.New("username already in use")
	ErrEmailInUse   = errors.New("email already in use")
	ErrInvalidCode  = errors.New("invalid confirmation code")
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func validationErrorf(field, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
