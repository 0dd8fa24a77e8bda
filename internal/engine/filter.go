package engine

import (
	"log/slog"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/compiler"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/ir"
	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// DefaultBatchSize is the chunk size FilterBatch uses when given a size
// below 1.
const DefaultBatchSize = 1000

// Filter returns the records that satisfy expr, in input order.
//
// An empty collection yields an empty (non-nil) slice. An empty expression
// yields records itself. If expr cannot be compiled, the error is logged and
// the result is empty. Malformed structure never fails the call: affected
// records are simply excluded.
func Filter[T any](records []T, expr ir.Expression) []T {
	if len(records) == 0 {
		return []T{}
	}
	if len(expr) == 0 {
		return records
	}

	prog, ok := compileForFilter(expr)
	if !ok {
		return []T{}
	}
	return matchRange(prog, NewStacks(prog.Len()), records, make([]T, 0))
}

// FilterBatch is Filter processing records in contiguous chunks of
// batchSize. Results are identical to Filter for every batchSize. Inputs
// shorter than two batches are handed to Filter.
func FilterBatch[T any](records []T, expr ir.Expression, batchSize int) []T {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	if len(records) == 0 {
		return []T{}
	}
	if len(expr) == 0 {
		return records
	}
	if len(records) < 2*batchSize {
		return Filter(records, expr)
	}

	prog, ok := compileForFilter(expr)
	if !ok {
		return []T{}
	}

	st := NewStacks(prog.Len())
	result := make([]T, 0)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		result = matchRange(prog, st, records[start:end], result)
	}
	return result
}

func compileForFilter(expr ir.Expression) (*queryir.Program, bool) {
	prog, err := compiler.Compile(expr)
	if err != nil {
		slog.Error("failed to compile filter expression", "error", err)
		return nil, false
	}
	return prog, true
}

// matchRange appends the matching records to out.
func matchRange[T any](prog *queryir.Program, st *Stacks, records []T, out []T) []T {
	for i := range records {
		if Evaluate(records[i], prog, st) {
			out = append(out, records[i])
		}
	}
	return out
}
