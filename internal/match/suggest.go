package match

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxDistanceRatio bounds how different a suggestion may be, relative to the
// length of the longer name.
const maxDistanceRatio = 0.4

// Closest returns the candidate nearest to name, compared case-insensitively.
// It reports false when no candidate is close enough to be a plausible typo.
func Closest(name string, candidates []string) (string, bool) {
	best, bestDist := "", -1
	folded := strings.ToLower(name)

	for _, c := range candidates {
		if c == name {
			continue
		}

		d := Levenshtein(folded, strings.ToLower(c))

		limit := int(maxDistanceRatio * float64(max(utf8.RuneCountInString(name), utf8.RuneCountInString(c))))
		if d > max(limit, 1) {
			continue
		}

		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}

	return best, bestDist >= 0
}

// Hint formats a ", did you mean %q?" suffix, or "" when nothing is close.
func Hint(name string, candidates []string) string {
	if s, ok := Closest(name, candidates); ok {
		return fmt.Sprintf(", did you mean %q?", s)
	}

	return ""
}
