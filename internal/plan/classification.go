package plan

import (
	"builder-generator/internal/analyze"
	"builder-generator/internal/common"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/directive"
)

// ClassKind is the behavioral category of a field.
type ClassKind int

const (
	// ClassRequired - must be set before Build succeeds.
	ClassRequired ClassKind = iota
	// ClassOptional - a *T field, absent unless set.
	ClassOptional
	// ClassRepeated - a []E field accumulated element by element.
	ClassRepeated
)

// String returns a human-readable class name.
func (k ClassKind) String() string {
	switch k {
	case ClassRequired:
		return "required"
	case ClassOptional:
		return "optional"
	case ClassRepeated:
		return "repeated"
	default:
		return common.UnknownStr
	}
}

// Classification is the category assigned to one field.
type Classification struct {
	Kind ClassKind
	// Type is T for required and optional fields and the element type E for
	// repeated fields.
	Type analyze.TypeSignature
	// Accessor is the directive's per-element accessor (repeated only).
	Accessor string
}

// Required creates a required classification.
func Required(t analyze.TypeSignature) Classification {
	return Classification{Kind: ClassRequired, Type: t}
}

// OptionalOf creates an optional classification holding T.
func OptionalOf(t analyze.TypeSignature) Classification {
	return Classification{Kind: ClassOptional, Type: t}
}

// Repeated creates a repeated classification of element type elem.
func Repeated(elem analyze.TypeSignature, accessor string) Classification {
	return Classification{Kind: ClassRepeated, Type: elem, Accessor: accessor}
}

// Classify assigns a field its classification, in precedence order:
//  1. *T is optional; a directive on it has no effect.
//  2. A directive requires []E and makes the field repeated.
//  3. Anything else is required.
func Classify(field analyze.FieldDescriptor, d *directive.AttributeDirective) (Classification, error) {
	sig := field.Type

	if sig.Kind == analyze.SignatureOptional {
		return OptionalOf(*sig.Elem), nil
	}

	if d != nil {
		if sig.Kind != analyze.SignatureSequence {
			return Classification{}, diagnostic.New(diagnostic.KindTypeMismatch, d.Location,
				"builder(each = %q) requires a slice type, field %s has type %s",
				d.Accessor, field.Name, sig.Expr)
		}

		return Repeated(*sig.Elem, d.Accessor), nil
	}

	return Required(sig), nil
}
