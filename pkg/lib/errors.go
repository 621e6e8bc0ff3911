package lib

import "errors"

var (
	// ErrNotFound is returned when a resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource with the same name or code already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned on invalid input or workflow transitions.
	ErrNotValid = errors.New("not valid")
	// ErrNotAllowed is returned when the acting user can't do the operation.
	ErrNotAllowed = errors.New("not allowed")
)
