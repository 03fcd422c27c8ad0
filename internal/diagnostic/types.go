package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"strings"

	"builder-generator/internal/common"
)

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind classifies a generation-time diagnostic.
type Kind int

const (
	// KindUnsupportedShape - the input is not a struct with named fields.
	KindUnsupportedShape Kind = iota // UnsupportedShape
	// KindMalformedDirective - a builder directive violates the attribute grammar.
	KindMalformedDirective // MalformedDirective
	// KindTypeMismatch - a directive is attached to a field of an incompatible type.
	KindTypeMismatch // TypeMismatch
	// KindNameCollision - two generated methods would share a name.
	KindNameCollision // NameCollision
	// KindIgnoredDirective - a directive was accepted but has no effect.
	KindIgnoredDirective // IgnoredDirective
)

// DiagnosticSeverity represents the severity level of a diagnostic.
type DiagnosticSeverity int

const (
	DiagnosticInfo DiagnosticSeverity = iota
	DiagnosticWarning
	DiagnosticError
)

// String returns a human-readable severity name.
func (s DiagnosticSeverity) String() string {
	switch s {
	case DiagnosticInfo:
		return "info"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Location points at a position in an input file.
type Location struct {
	File   string
	Line   int
	Column int
}

// FromPosition converts a go/token position into a Location.
func FromPosition(pos token.Position) Location {
	return Location{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

// IsValid reports whether the location carries at least a line number.
func (l Location) IsValid() bool {
	return l.Line > 0
}

// String formats the location as file:line:col, omitting unknown parts.
func (l Location) String() string {
	s := l.File
	if l.Line > 0 {
		if s != "" {
			s += ":"
		}

		s += fmt.Sprintf("%d", l.Line)
		if l.Column > 0 {
			s += fmt.Sprintf(":%d", l.Column)
		}
	}

	return s
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	// Severity of the diagnostic.
	Severity DiagnosticSeverity
	// Kind identifies the class of problem.
	Kind Kind
	// Message is the human-readable description.
	Message string
	// Location is where the problem was found.
	Location Location
	// TypeName identifies the record type (if any).
	TypeName string
	// Field identifies the field (if any).
	Field string
}

// New creates an error-severity diagnostic.
func New(kind Kind, loc Location, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: DiagnosticError,
		Kind:     kind,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// WithSubject returns a copy of d attributed to the given type and field.
func (d Diagnostic) WithSubject(typeName, field string) Diagnostic {
	if d.TypeName == "" {
		d.TypeName = typeName
	}

	if d.Field == "" {
		d.Field = field
	}

	return d
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	return d.String()
}

// String returns a formatted diagnostic string.
func (d Diagnostic) String() string {
	var parts []string
	if d.Location.IsValid() || d.Location.File != "" {
		parts = append(parts, d.Location.String())
	}

	parts = append(parts, d.Kind.String())

	subject := d.TypeName
	if d.Field != "" {
		if subject != "" {
			subject += "."
		}

		subject += d.Field
	}

	if subject != "" {
		parts = append(parts, subject)
	}

	return strings.Join(parts, ": ") + ": " + d.Message
}

// As extracts a Diagnostic from an error chain.
func As(err error) (Diagnostic, bool) {
	var d Diagnostic
	if errors.As(err, &d) {
		return d, true
	}

	return Diagnostic{}, false
}

// Diagnostics holds all diagnostic information from a generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// Add appends d to the list matching its severity.
func (ds *Diagnostics) Add(d Diagnostic) {
	if d.Severity == DiagnosticError {
		ds.Errors = append(ds.Errors, d)
		return
	}

	ds.Warnings = append(ds.Warnings, d)
}

// HasErrors returns true if there are any error diagnostics.
func (ds *Diagnostics) HasErrors() bool {
	return len(ds.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (ds *Diagnostics) Merge(other Diagnostics) {
	ds.Errors = append(ds.Errors, other.Errors...)
	ds.Warnings = append(ds.Warnings, other.Warnings...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (ds *Diagnostics) Error() error {
	if !ds.HasErrors() {
		return nil
	}

	errs := make([]error, 0, len(ds.Errors))
	for _, d := range ds.Errors {
		errs = append(errs, d)
	}

	return errors.Join(errs...)
}
