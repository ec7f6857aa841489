package domain

import "errors"

// Catalog errors. Callers check them with errors.Is.
var (
	// ErrPathNotFound is returned when a category path does not resolve.
	ErrPathNotFound = errors.New("category path not found")
	// ErrNotAList is returned when a list operation targets a category node.
	ErrNotAList = errors.New("category is not a company list")
	// ErrIndexOutOfBounds is returned when an index is outside the company list.
	ErrIndexOutOfBounds = errors.New("company index out of bounds")
	// ErrValidation is returned when a record misses a required field.
	ErrValidation = errors.New("company record is invalid")
	// ErrCompanyNotFound is returned when a name lookup has no match.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrInvalidDocument is returned when a taxonomy document has an unexpected shape.
	ErrInvalidDocument = errors.New("invalid taxonomy document")
)
