// Package ir provides the input-side types for the filter engine: the token
// sequence a caller supplies, the runtime value model used when comparing
// record fields, and canonical JSON encoding of records.
//
// This package imports nothing internal. The compiler, the instruction set
// (queryir) and the evaluator all build on it.
//
// Key design constraints:
//   - Expressions are flat; nesting is implied by Group tokens only
//   - A nil Token is a hole and is skipped by every consumer
//   - Undefined (absent) and null are distinct values
//   - Numbers are float64 at comparison time, formatted like ECMAScript
package ir
