package analyze

import (
	"go/ast"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"

	"builder-generator/internal/diagnostic"
)

// GenerateMarker selects a type for generation when found in its doc comment.
const GenerateMarker = "builder:generate"

// CollectMarkers returns every "+marker" comment line in the given groups,
// in source order. The text after "+" is kept verbatim.
//
//	// +builder(each = "arg")
//	// +debug(format = "%q")
func CollectMarkers(fset *token.FileSet, groups ...*ast.CommentGroup) []RawDirective {
	var markers []RawDirective

	for _, group := range groups {
		if group == nil {
			continue
		}

		for _, c := range group.List {
			markers = append(markers, commentMarkers(fset, c)...)
		}
	}

	return markers
}

func commentMarkers(fset *token.FileSet, c *ast.Comment) []RawDirective {
	body, offset := c.Text, 2
	switch {
	case strings.HasPrefix(body, "//"):
		body = body[2:]
	case strings.HasPrefix(body, "/*"):
		body = strings.TrimSuffix(body[2:], "*/")
	default:
		offset = 0
	}

	var markers []RawDirective

	for _, line := range strings.SplitAfter(body, "\n") {
		trimmed := strings.TrimLeft(line, " \t*")
		lead := len(line) - len(trimmed)

		if text, ok := markerText(trimmed); ok {
			pos := fset.Position(c.Slash + token.Pos(offset+lead))
			markers = append(markers, RawDirective{
				Text:     text,
				Location: diagnostic.FromPosition(pos),
			})
		}

		offset += len(line)
	}

	return markers
}

func markerText(line string) (string, bool) {
	rest, ok := strings.CutPrefix(line, "+")
	if !ok {
		return "", false
	}

	r, _ := utf8.DecodeRuneInString(rest)
	if !unicode.IsLetter(r) {
		return "", false
	}

	return strings.TrimSpace(rest), true
}

// HasMarker reports whether markers contain one whose text is exactly name.
func HasMarker(markers []RawDirective, name string) bool {
	for _, m := range markers {
		if m.Text == name {
			return true
		}
	}

	return false
}
