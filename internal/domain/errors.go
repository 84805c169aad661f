package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrNotEmpty      = errors.New("not empty")
	ErrForbidden     = errors.New("forbidden")
)

// NotFoundError reports a missing (or hidden) record.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// AlreadyExistsError reports a uniqueness conflict on Field.
type AlreadyExistsError struct {
	Entity string
	Field  string
	Value  string
}

func (e *AlreadyExistsError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s with this %s already exists", e.Entity, e.Field)
	}
	return fmt.Sprintf("%s with %s '%s' already exists", e.Entity, e.Field, e.Value)
}

func (e *AlreadyExistsError) Is(target error) bool { return target == ErrAlreadyExists }

// NotEmptyError is returned when a hard delete is blocked by child records.
type NotEmptyError struct {
	Entity   string
	ID       string
	Children string
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("cannot delete %s: it still has %s, deactivate it instead", e.Entity, e.Children)
}

func (e *NotEmptyError) Is(target error) bool { return target == ErrNotEmpty }

// FieldViolation names one failed constraint.
type FieldViolation struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

// ValidationError carries every violation found in one input. Field and
// Constraint describe the first one.
type ValidationError struct {
	Field      string
	Constraint string
	Violations []FieldViolation
}

func NewValidationError(field, constraint string) *ValidationError {
	return &ValidationError{
		Field:      field,
		Constraint: constraint,
		Violations: []FieldViolation{{Field: field, Constraint: constraint}},
	}
}

func (e *ValidationError) Error() string {
	if len(e.Violations) <= 1 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Constraint)
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Constraint)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
