// Package diagnostic provides structured generation-time diagnostics for the
// builder generator.
//
// Every diagnostic carries a Kind, a human-readable message and the source
// location of the offending type, field or directive. A Diagnostic is also an
// error, so pipeline stages return it directly and callers use errors.As.
package diagnostic
