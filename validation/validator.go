// Package validation collects request validation failures into one
// structured error.
package validation

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/echoscribe/echoscribe/errors"
)

// Validator accumulates field errors across a chain of checks.
type Validator struct {
	errors []FieldError
}

// FieldError is one failed check.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a field error.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Validate returns an AppError covering all failed checks, or nil.
func (v *Validator) Validate() *apperrors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := apperrors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{"fields": v.errors}
	return appErr
}

// Required checks that a string is non-blank.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.AddError(field, "is required")
	}
	return v
}

// MaxLength checks that a string is within maxLen bytes.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	if len(value) > maxLen {
		v.AddError(field, fmt.Sprintf("must be %d characters or less", maxLen))
	}
	return v
}

// Min checks a lower bound.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	if value < minVal {
		v.AddError(field, fmt.Sprintf("must be at least %d", minVal))
	}
	return v
}

// OneOf checks membership in an allowed set, skipping empty values.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	if value == "" {
		return v
	}
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.AddError(field, fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
	return v
}

// Custom records a failure when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	if !condition {
		v.AddError(field, message)
	}
	return v
}

// ParseID validates and parses a positive int64 id, as used in URL paths.
func ParseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.InvalidInput(field, "must be a positive integer id")
	}
	return id, nil
}
