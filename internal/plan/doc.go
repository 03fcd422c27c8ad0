// Package plan turns a record descriptor into a BuilderPlan consumed by code
// generation.
//
// Planning pipeline:
//  1. Parse the builder directive of every field
//  2. Classify every field as required, optional or repeated
//  3. Derive slot and method names and reject colliding method sets
//
// The first diagnostic aborts planning for the type.
package plan
