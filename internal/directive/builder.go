package directive

import (
	"go/token"

	"builder-generator/internal/analyze"
	"builder-generator/internal/diagnostic"
	"builder-generator/internal/match"
)

const (
	// Namespace is the reserved marker namespace of the builder generator.
	Namespace = "builder"
	// KeyEach declares the per-element accessor of a repeated field.
	KeyEach = "each"
	// ExpectedForm is quoted in every malformed directive message.
	ExpectedForm = "expected `builder(each = \"...\")`"
)

// AttributeDirective is a validated builder directive.
type AttributeDirective struct {
	Key string
	// Accessor names the per-element append method.
	Accessor string
	Location diagnostic.Location
}

// Parse finds and validates the builder directive among the raw markers of a
// field. It returns nil when the field has no builder directive; markers of
// other namespaces are ignored. Every grammar violation is reported as a
// diagnostic.KindMalformedDirective diagnostic.
func Parse(raws []analyze.RawDirective) (*AttributeDirective, error) {
	var found *AttributeDirective

	for _, raw := range raws {
		m, ok, err := ParseMarker(raw, Namespace)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		if found != nil {
			return nil, malformed(m.Location, "duplicate builder directive, at most one is allowed per field")
		}

		d, err := validate(m)
		if err != nil {
			return nil, err
		}

		found = d
	}

	return found, nil
}

func validate(m Marker) (*AttributeDirective, error) {
	switch {
	case !m.HasArgs, len(m.Pairs) == 0:
		return nil, malformed(m.Location, "%s", ExpectedForm)
	case len(m.Pairs) > 1:
		return nil, malformed(m.Pairs[1].Location, "%s, found %d arguments", ExpectedForm, len(m.Pairs))
	}

	pair := m.Pairs[0]

	if pair.Key != KeyEach {
		return nil, malformed(pair.Location, "%s, found key %q%s", ExpectedForm, pair.Key, match.Hint(pair.Key, []string{KeyEach}))
	}

	if !pair.Value.IsString() {
		return nil, malformed(pair.ValueLocation, "%s, value must be a string literal, found %s", ExpectedForm, pair.Value.Lit)
	}

	accessor := pair.Value.String()
	// Keywords are fine: the method name is export-cased.
	if !(token.IsIdentifier(accessor) || token.IsKeyword(accessor)) || accessor == "_" {
		return nil, malformed(pair.ValueLocation, "accessor name %q is not a valid Go identifier", accessor)
	}

	return &AttributeDirective{
		Key:      pair.Key,
		Accessor: accessor,
		Location: m.Location,
	}, nil
}

func malformed(loc diagnostic.Location, format string, args ...any) error {
	return diagnostic.New(diagnostic.KindMalformedDirective, loc, format, args...)
}
