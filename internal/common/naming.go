package common

import (
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExportName upper-cases the first rune of name ("currentDir" -> "CurrentDir").
func ExportName(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}

	return string(unicode.ToUpper(r)) + name[size:]
}

// LowerCamel lower-cases the leading upper-case run of name, keeping the last
// upper-case rune of the run when it starts a new word:
//   - "CurrentDir" -> "currentDir"
//   - "URL" -> "url"
//   - "HTTPServer" -> "httpServer"
func LowerCamel(name string) string {
	runes := []rune(name)

	upper := 0
	for upper < len(runes) && unicode.IsUpper(runes[upper]) {
		upper++
	}

	switch {
	case upper == 0:
		return name
	case upper == 1 || upper == len(runes):
		// Single leading capital or all caps.
	default:
		if unicode.IsLetter(runes[upper]) {
			upper--
		}
	}

	for i := range upper {
		runes[i] = unicode.ToLower(runes[i])
	}

	return string(runes)
}

// SnakeCase converts a Go identifier to snake_case ("HTTPServer" -> "http_server").
func SnakeCase(name string) string {
	runes := []rune(name)

	var sb strings.Builder

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])

			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				sb.WriteByte('_')
			}
		}

		sb.WriteRune(unicode.ToLower(r))
	}

	return sb.String()
}

// SafeIdent appends an underscore to identifiers that are Go keywords.
func SafeIdent(name string) string {
	if token.IsKeyword(name) {
		return name + "_"
	}

	return name
}
