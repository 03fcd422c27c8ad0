// Package buildkit is the runtime support of builders generated by builder-gen.
package buildkit

import (
	"errors"
	"fmt"
)

// ErrMissingField matches every *MissingFieldError via errors.Is.
var ErrMissingField = errors.New("missing required field")

// MissingFieldError is returned by a generated Build method when a required
// field was never set.
type MissingFieldError struct {
	// Type is the record type being built.
	Type string
	// Field is the first required field, in declaration order, that is unset.
	Field string
}

// Error implements the error interface.
func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("building %s: %s: field %s", e.Type, ErrMissingField, e.Field)
}

// Is reports whether target is ErrMissingField.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
