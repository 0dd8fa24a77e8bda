package engine

import (
	"fmt"
	"sync"

	"github.com/Mika83AC/ad-hoc-json-filter/internal/queryir"
)

// Evaluate runs prog against record using st as scratch space and returns
// whether the record matches. An empty program matches every record.
// Malformed programs yield false; use Explain to see why.
func Evaluate(record any, prog *queryir.Program, st *Stacks) bool {
	ok, _ := run(record, prog, st)
	return ok
}

// Explain is Evaluate with the reason for a fail-closed result. The error,
// when non-nil, is an *EvalError and the result is false.
func Explain(record any, prog *queryir.Program) (bool, error) {
	ok, err := run(record, prog, NewStacks(prog.Len()))
	if err != nil {
		return false, err
	}
	return ok, nil
}

// run is the evaluation loop. It never panics: a panicking predicate makes
// the record false.
func run(record any, prog *queryir.Program, st *Stacks) (matched bool, evalErr *EvalError) {
	if prog.Empty() {
		return true, nil
	}

	st.Reset()
	index := 0
	defer func() {
		if r := recover(); r != nil {
			matched = false
			evalErr = newEvalError(ErrCodePredicatePanic, index, "%s", fmt.Sprint(r))
		}
	}()

	for i, instr := range prog.Instructions {
		index = i
		switch in := instr.(type) {
		case queryir.Condition:
			st.pushOperand(in.Eval(record))

		case queryir.Open:
			st.pushOperator(stackOpen)

		case queryir.Close:
			for {
				top, ok := st.top()
				if !ok {
					return false, newEvalError(ErrCodeUnmatchedClose, i, "\")\" has no matching \"(\"")
				}
				if top == stackOpen {
					st.popOperator()
					break
				}
				if err := st.apply(i); err != nil {
					return false, err
				}
			}

		case queryir.Operator:
			op := opFor(in)
			for {
				top, ok := st.top()
				if !ok || top == stackOpen || top.precedence() < op.precedence() {
					break
				}
				if err := st.apply(i); err != nil {
					return false, err
				}
			}
			st.pushOperator(op)
		}
	}

	for {
		top, ok := st.top()
		if !ok {
			break
		}
		if top == stackOpen {
			return false, newEvalError(ErrCodeUnclosedGroup, -1, "\"(\" is never closed")
		}
		if err := st.apply(-1); err != nil {
			return false, err
		}
	}
	return st.result()
}

// Evaluator matches records against one Program. It is safe for concurrent
// use: each call takes its own Stacks from the evaluator's pool.
type Evaluator struct {
	prog *queryir.Program
	pool sync.Pool
}

// NewEvaluator creates an evaluator for prog.
func NewEvaluator(prog *queryir.Program) *Evaluator {
	e := &Evaluator{prog: prog}
	depth := prog.Len()
	e.pool.New = func() any {
		return NewStacks(depth)
	}
	return e
}

// Program returns the evaluator's program.
func (e *Evaluator) Program() *queryir.Program {
	return e.prog
}

// Match reports whether record satisfies the program.
func (e *Evaluator) Match(record any) bool {
	ok, _ := e.Explain(record)
	return ok
}

// Explain is Match with the reason for a fail-closed result.
func (e *Evaluator) Explain(record any) (bool, error) {
	st := e.pool.Get().(*Stacks)
	defer e.pool.Put(st)

	ok, err := run(record, e.prog, st)
	if err != nil {
		return false, err
	}
	return ok, nil
}
