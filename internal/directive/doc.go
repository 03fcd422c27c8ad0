// Package directive parses "+namespace(key = value, ...)" field markers.
//
// ParseMarker tokenizes one marker with go/scanner and only looks past the
// namespace when it matches the one requested, so markers belonging to other
// tools (+kubebuilder:..., +debug(...)) are skipped without error.
//
// Parse validates the builder accumulation directive:
//
//	// +builder(each = "arg")
package directive
