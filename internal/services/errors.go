package services

import (
	"errors"
	"sort"
	"strings"
)

// Errors returned by the user services. Handlers classify them with errors.Is.
var (
	ErrNotFound          = errors.New("user not found")
	ErrCreate            = errors.New("failed to create user")
	ErrUpdate            = errors.New("failed to update user")
	ErrDelete            = errors.New("failed to delete user")
	ErrSelfDelete        = errors.New("user cannot delete own account")
	ErrForeignKey        = errors.New("user is referenced by other records")
	ErrUnsupportedFormat = errors.New("unsupported import file format")
	ErrImportFormat      = errors.New("invalid import file header")
	ErrImportFileMissing = errors.New("import file is missing")
	ErrImportFailed      = errors.New("import failed")
)

// ValidationError lists the fields that violated a constraint together with their messages
type ValidationError struct {
	Fields map[string]string `json:"errors"`
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string]string{}}
}

// Add records a message for field. The first message recorded for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e.Fields[field]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
