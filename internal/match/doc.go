// Package match provides fuzzy name matching for "did you mean" hints in
// diagnostics.
package match
