package domain

import "errors"

var (
	ErrElementNotFound  = errors.New("element not found")
	ErrBookNotAvailable = errors.New("book not available")
	// ErrAlreadyExists is returned by repositories on a unique constraint violation.
	ErrAlreadyExists = errors.New("already exists")
)
