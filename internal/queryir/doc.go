// Package queryir defines the compiled form of a filter expression.
//
// A Program is a flat, ordered list of instructions produced once by the
// compiler and replayed by the evaluator for every record:
//
//	[expression tokens] → compiler → [Program] → engine (per record) → bool
//
// INSTRUCTIONS:
//
//   - Condition: a compiled predicate over one record (path, comparator, literal)
//   - Operator: AND, OR, or Unsupported for an unrecognized connective
//   - Open / Close: group barriers
//
// Implicit AND connectors are already materialized; the evaluator never
// inspects the source tokens.
//
// SEALED INTERFACES:
//
// Instruction is a sealed interface using the marker method pattern, so the
// evaluator can switch exhaustively:
//
//	switch in := instr.(type) {
//	case Condition:
//	    // push predicate result
//	case Operator:
//	    // reduce by precedence, push
//	case Open:
//	    // push barrier
//	case Close:
//	    // reduce to barrier
//	}
//
// Programs are immutable once built and safe to share across goroutines.
package queryir
