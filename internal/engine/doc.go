// Package engine evaluates compiled filter programs against records.
//
// ARCHITECTURE:
//
// The evaluator is a precedence-climbing machine over two stacks: an operand
// stack of booleans and an operator stack of AND, OR, "(" barriers and
// unsupported connectives. A Program is replayed once per record:
//
//  1. Condition: evaluate the predicate, push the result
//  2. Open: push a barrier
//  3. Close: reduce until the barrier, pop it
//  4. Operator: reduce while the top binds at least as tightly, push
//  5. End: reduce everything; the single remaining operand is the answer
//
// AND binds tighter than OR. Conditions are evaluated eagerly as they are
// met; only the boolean combination is deferred.
//
// FAIL-CLOSED:
//
// A malformed program (unmatched ")", unclosed "(", a connector with a
// missing operand, an unsupported connective) makes that record false. It
// never aborts the call. Explain reports why.
//
// RESOURCES:
//
// Each evaluation owns its Stacks. An Evaluator keeps a sync.Pool of them so
// that concurrent Match calls never share scratch space. Programs are
// immutable and shared read-only.
//
// ENTRY POINTS:
//
//   - Filter / FilterBatch: compile once, return matching records
//   - Evaluator: match records against one Program
//   - Runner: context-aware runs with logging, metrics and tracing
package engine
