package models

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ValidationError. Their text is what API clients see.
var (
	ErrInvalidDate  = errors.New("Invalid date")
	ErrInvalidYear  = errors.New("Invalid year")
	ErrInvalidDays  = errors.New("Invalid days")
	ErrInvalidEntry = errors.New("Invalid entry")
	ErrInvalidUser  = errors.New("Invalid user")
)

// ValidationError represents a rejected input value
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

// NewValidationError builds a ValidationError whose message is the sentinel's text
func NewValidationError(sentinel error, field, value string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: sentinel.Error(),
		Err:     sentinel,
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Unwrap exposes the sentinel for errors.Is
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsTransient returns false as validation errors are permanent
func (e *ValidationError) IsTransient() bool {
	return false
}

// NotFoundError represents a resource not found error
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

func (e *NotFoundError) IsTransient() bool {
	return false
}

// ConflictError represents a uniqueness violation
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *ConflictError) IsTransient() bool {
	return false
}
