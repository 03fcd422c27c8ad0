// Package printer generates String methods for record types.
//
// Each field renders with the verb given by its `+debug(format = "...")`
// marker, or %v when it has none. Absent optional fields render as <nil>.
package printer
