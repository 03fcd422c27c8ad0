// Package analyze extracts record type descriptors for the builder generator.
//
// Three front ends produce the same TypeDescriptor model:
//   - Go packages loaded with golang.org/x/tools/go/packages (AST + go/types)
//   - YAML descriptor files
//   - HCL descriptor files
//
// Key types:
//   - TypeDescriptor: a struct type with its ordered fields
//   - FieldDescriptor: field name, declared type signature and raw directive markers
//   - TypeSignature: plain, optional (*T) or sequence ([]E) shape of a field type
//   - Source: a loaded input that yields descriptors by type name
package analyze
