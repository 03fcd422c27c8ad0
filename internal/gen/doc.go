// Package gen provides deterministic Go code generation for builder types.
//
// Emission first builds an intermediate code model (Code) from a
// plan.BuilderPlan, then renders it with text/template + go/format as an
// isolated last step.
//
// Generated members per field class:
//   - Required: *T slot, setter taking T, checked by Build
//   - Optional: *T slot, setter taking T, nil in the result when unset
//   - Repeated: []E slot, bulk setter taking []E and append method taking E
package gen
