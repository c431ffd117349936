package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a record is required to exist and does not.
	ErrNotFound = errors.New("record was not found")

	// ErrForbidden is returned when the acting user does not own the record.
	ErrForbidden = errors.New("acting user is not the record owner")

	// ErrConflict is returned when an update presents a stale concurrency
	// token. The caller is expected to re-fetch and retry.
	ErrConflict = errors.New("record changed, please refresh")
)

// FieldError is one field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the full collected set of field-level failures for
// a candidate payload.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError wraps field errors; it returns nil when there are none.
func NewValidationError(fields []FieldError) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
