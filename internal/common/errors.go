// Package common provides shared utilities and types used across the application.
package common

import "errors"

// Common application errors.
var (
	// Database errors.
	ErrNotFound = errors.New("not found")

	// Import errors.
	ErrNoStrategy               = errors.New("no import strategy found")
	ErrInvalidHeader            = errors.New("invalid file header")
	ErrDuplicateSourceReference = errors.New("duplicate source references in file")
)
