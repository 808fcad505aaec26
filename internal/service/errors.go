package service

import "errors"

// Common service errors
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidDocType is returned for document types outside QUOTE, ORDER, INVOICE
	ErrInvalidDocType = errors.New("invalid document type")

	// ErrConflict is returned when there's a conflict (e.g., duplicate or already converted)
	ErrConflict = errors.New("resource conflict")
)
